package convert

import (
	"context"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Format selects the batch conversion output format.
type Format string

// Supported batch output formats.
const (
	FormatHTML Format = "html"
	FormatText Format = "text"
)

// BatchConvert converts every .mhtml file in dir, writing the converted
// files next to the captures. Conversions run concurrently, bounded by
// workers. The first error cancels the remaining work.
func (c *Converter) BatchConvert(ctx context.Context, dir string, format Format, workers int) (int, error) {
	captures, err := filepath.Glob(filepath.Join(dir, "*.mhtml"))
	if err != nil {
		return 0, err
	}

	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, capture := range captures {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			stem := strings.TrimSuffix(capture, ".mhtml")
			c.logger.Info("converting", "file", filepath.Base(capture))

			if format == FormatText {
				return c.TextFile(capture, stem+".txt")
			}
			return c.ConvertFile(capture, stem+".html")
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(captures), nil
}
