// Package storage persists fetched pages to the output directory.
//
// Two savers implement the crawl variants. CaptureSaver writes each page as
// a single flattened file whose name encodes the page's position in the
// manual, so a whole category can be reviewed from one directory listing.
// MirrorSaver reproduces the site's directory layout under the output root,
// downloads the assets each page references, and rewrites links so the
// mirror navigates offline.
//
// Both savers write atomically (temp file plus rename) so an interrupted
// run never leaves half-written files behind.
package storage
