package processor

import (
	"context"
	"log/slog"
	"time"

	"github.com/SolarisQuests/documentanalysis/internal/extract"
	"github.com/SolarisQuests/documentanalysis/internal/llm"
)

// Processor coordinates OCR (text extract) then LLM correction per page.
type Processor struct {
	Logger      *slog.Logger
	Extractor   extract.TextExtractor
	Corrector   llm.PageCorrector
	Concurrency int
}

func NewProcessor(logger *slog.Logger, extractor extract.TextExtractor, corrector llm.PageCorrector, concurrency int) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Processor{
		Logger:      logger,
		Extractor:   extractor,
		Corrector:   corrector,
		Concurrency: concurrency,
	}
}

// Process runs extraction then correction for an already-normalized PDF and
// assembles the final Result. It never returns an error: every stage failure
// becomes a failed Result with the failure message.
func (p *Processor) Process(ctx context.Context, path string) Result {
	pages, err := p.Extractor.Extract(ctx, path)
	if err != nil {
		p.Logger.Error("processor.extract.failed", "path", path, "err", err)
		return Failed(err.Error())
	}
	if len(pages) == 0 {
		p.Logger.Warn("processor.extract.empty", "path", path)
		return Failed("No data extracted")
	}
	p.Logger.Info("processor.extract.ok", "path", path, "pages", len(pages))

	corrected, err := CorrectPages(ctx, p.Corrector, pages, p.Concurrency)
	if err != nil {
		p.Logger.Error("processor.correct.failed", "path", path, "err", err)
		return Failed(err.Error())
	}
	p.Logger.Info("processor.correct.ok", "path", path, "pages", len(corrected))

	jsonData := make([]Page, len(corrected))
	for i, c := range corrected {
		jsonData[i] = Page{Index: c.Index, Text: c.Text}
	}
	ocrOutput := make([]Page, len(pages))
	for i, pg := range pages {
		ocrOutput[i] = Page{Index: pg.Index, Text: pg.Text}
	}

	return Result{
		Status:        StatusProcessed,
		JSONData:      jsonData,
		OCROutput:     ocrOutput,
		ProcessedDate: time.Now().UTC().Format(time.RFC3339),
	}
}
