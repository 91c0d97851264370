package storage

import "errors"

var (
	// ErrPathEscapes is returned when a derived output path would resolve
	// outside the output directory.
	ErrPathEscapes = errors.New("storage: derived path escapes the output directory")

	// ErrEmptyPath is returned when a page URL has no usable path to derive
	// a filename from.
	ErrEmptyPath = errors.New("storage: page URL has an empty path")
)
