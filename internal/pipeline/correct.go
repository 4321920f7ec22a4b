package processor

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/SolarisQuests/documentanalysis/internal/extract"
	"github.com/SolarisQuests/documentanalysis/internal/llm"
)

// CorrectPages runs the corrector over every page. Pages are independent, so
// calls fan out concurrently up to limit; the first failure cancels the rest
// and fails the whole batch. Output order follows input order regardless of
// completion order.
func CorrectPages(ctx context.Context, corrector llm.PageCorrector, pages []extract.PageText, limit int) ([]llm.CorrectedPage, error) {
	if limit <= 0 {
		limit = 1
	}

	out := make([]llm.CorrectedPage, len(pages))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	for i, page := range pages {
		i, page := i, page
		eg.Go(func() error {
			corrected, err := corrector.CorrectPage(gctx, page)
			if err != nil {
				return err
			}
			out[i] = corrected
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
