// Package convert turns flattened MHTML captures back into plain HTML.
//
// An MHTML snapshot is a MIME multipart/related message: one HTML part plus
// the images the page referenced, each addressed by Content-ID or
// Content-Location. Conversion extracts the images next to the HTML file,
// rewrites the image references to point at them, strips HTML comments, and
// rewrites portal links to the flattened local filenames, so a directory of
// captures becomes a browsable set of HTML files.
//
// A plain-text export built on html2text is also provided for feeding
// manual content into search indexes or language tooling.
package convert
