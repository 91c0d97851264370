package convert

import (
	"fmt"
	"os"

	"github.com/jaytaylor/html2text"
)

// HTMLToText renders HTML as readable plain text, keeping table structure
// where possible.
func HTMLToText(htmlContent []byte) (string, error) {
	return html2text.FromString(string(htmlContent), html2text.Options{
		PrettyTables: true,
	})
}

// TextFile converts one MHTML capture straight to a plain-text file.
func (c *Converter) TextFile(mhtmlPath, txtPath string) error {
	f, err := os.Open(mhtmlPath)
	if err != nil {
		return err
	}
	defer f.Close()

	parts, err := parseMHTML(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", mhtmlPath, err)
	}

	htmlPart := findHTMLPart(parts)
	if htmlPart == nil {
		return fmt.Errorf("%s: %w", mhtmlPath, ErrNoHTMLPart)
	}

	text, err := HTMLToText(htmlPart.body)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", mhtmlPath, err)
	}

	return os.WriteFile(txtPath, []byte(text), 0o644)
}
