package llm

import (
	"context"

	"github.com/SolarisQuests/documentanalysis/internal/extract"
)

// CorrectedPage pairs a page index with its corrected text. The index always
// matches the index of the PageText the correction came from.
type CorrectedPage struct {
	Index int
	Text  string
}

// PageCorrector is Stage 2: raw page text -> corrected page text. Pages are
// corrected independently, with no cross-page context.
type PageCorrector interface {
	CorrectPage(ctx context.Context, page extract.PageText) (CorrectedPage, error)
}
