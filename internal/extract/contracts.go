package extract

import "context"

// PageText pairs a zero-based page index with the raw text extracted from
// that page. Sequences are ordered by index, contiguous from 0.
type PageText struct {
	Index int
	Text  string
}

// TextExtractor is Stage 1: PDF file -> per-page text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) ([]PageText, error)
}
