package processor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SolarisQuests/documentanalysis/internal/extract"
	"github.com/SolarisQuests/documentanalysis/internal/llm"
)

type stubExtractor struct {
	pages []extract.PageText
	err   error
}

func (s *stubExtractor) Extract(context.Context, string) ([]extract.PageText, error) {
	return s.pages, s.err
}

type stubCorrector struct {
	calls     atomic.Int32
	failIndex int // page index that fails; -1 for none
	delays    map[int]time.Duration
}

func (s *stubCorrector) CorrectPage(ctx context.Context, page extract.PageText) (llm.CorrectedPage, error) {
	s.calls.Add(1)
	if d, ok := s.delays[page.Index]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return llm.CorrectedPage{}, ctx.Err()
		}
	}
	if page.Index == s.failIndex {
		return llm.CorrectedPage{}, fmt.Errorf("correct page %d: service unavailable", page.Index)
	}
	return llm.CorrectedPage{Index: page.Index, Text: "corrected " + page.Text}, nil
}

func twoPages() []extract.PageText {
	return []extract.PageText{
		{Index: 0, Text: "first raw"},
		{Index: 1, Text: "second raw"},
	}
}

func TestProcessSuccess(t *testing.T) {
	corrector := &stubCorrector{failIndex: -1}
	p := NewProcessor(nil, &stubExtractor{pages: twoPages()}, corrector, 4)

	res := p.Process(context.Background(), "/tmp/sample.pdf")

	require.Equal(t, StatusProcessed, res.Status)
	assert.Empty(t, res.Message)
	require.Len(t, res.JSONData, 2)
	require.Len(t, res.OCROutput, 2)
	for i := range res.JSONData {
		assert.Equal(t, res.OCROutput[i].Index, res.JSONData[i].Index)
	}
	assert.Equal(t, "corrected first raw", res.JSONData[0].Text)
	assert.Equal(t, "first raw", res.OCROutput[0].Text)

	ts, err := time.Parse(time.RFC3339, res.ProcessedDate)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), ts, time.Minute)
}

func TestProcessEmptyExtraction(t *testing.T) {
	corrector := &stubCorrector{failIndex: -1}
	p := NewProcessor(nil, &stubExtractor{pages: nil}, corrector, 4)

	res := p.Process(context.Background(), "/tmp/sample.pdf")

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, "No data extracted", res.Message)
	assert.Zero(t, corrector.calls.Load(), "corrector must not run on empty extraction")
}

func TestProcessExtractionFailure(t *testing.T) {
	p := NewProcessor(nil, &stubExtractor{err: errors.New("analysis failed: timeout")}, &stubCorrector{failIndex: -1}, 4)

	res := p.Process(context.Background(), "/tmp/sample.pdf")

	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Message, "analysis failed")
	assert.Empty(t, res.JSONData)
}

func TestProcessCorrectionFailureDropsPartialOutput(t *testing.T) {
	corrector := &stubCorrector{failIndex: 1}
	p := NewProcessor(nil, &stubExtractor{pages: twoPages()}, corrector, 4)

	res := p.Process(context.Background(), "/tmp/sample.pdf")

	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Message, "page 1")
	assert.Empty(t, res.JSONData, "no partial corrected output on failure")
	assert.Empty(t, res.OCROutput)
}

func TestCorrectPagesPreservesOrderUnderConcurrency(t *testing.T) {
	pages := []extract.PageText{
		{Index: 0, Text: "slow page"},
		{Index: 1, Text: "quick page"},
		{Index: 2, Text: "quicker page"},
	}
	// Page 0 finishes last; output order must still follow page indices.
	corrector := &stubCorrector{
		failIndex: -1,
		delays:    map[int]time.Duration{0: 50 * time.Millisecond},
	}

	out, err := CorrectPages(context.Background(), corrector, pages, 3)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, c := range out {
		assert.Equal(t, i, c.Index)
	}
}

func TestCorrectPagesFirstFailureFailsBatch(t *testing.T) {
	pages := twoPages()
	corrector := &stubCorrector{failIndex: 0}

	_, err := CorrectPages(context.Background(), corrector, pages, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 0")
}
