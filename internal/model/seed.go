package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Seed is a configured starting URL for the crawl, paired with the manual
// category it belongs to (for example "user-manual" or "technical-manual").
// Seeds are immutable inputs for a run; the category label is inherited by
// every page discovered beneath the seed.
type Seed struct {
	// URL is the absolute URL of the starting page.
	URL string `yaml:"url"`

	// Category is the manual-category label used as a filename prefix in
	// the capture variant and as a reporting dimension in both variants.
	Category string `yaml:"category"`
}

// Seed validation errors.
var (
	// ErrSeedEmptyURL is returned when a seed has no URL.
	ErrSeedEmptyURL = errors.New("seed URL must not be empty")

	// ErrSeedEmptyCategory is returned when a seed has no category label.
	ErrSeedEmptyCategory = errors.New("seed category must not be empty")

	// ErrSeedNotAbsolute is returned when a seed URL is relative or uses
	// a scheme other than http or https.
	ErrSeedNotAbsolute = errors.New("seed URL must be absolute http(s)")
)

// Validate checks that the seed has a usable URL and a category label.
func (s Seed) Validate() error {
	if strings.TrimSpace(s.URL) == "" {
		return ErrSeedEmptyURL
	}
	if strings.TrimSpace(s.Category) == "" {
		return fmt.Errorf("%w: %s", ErrSeedEmptyCategory, s.URL)
	}

	u, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("invalid seed URL %q: %w", s.URL, err)
	}
	if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s", ErrSeedNotAbsolute, s.URL)
	}
	return nil
}
