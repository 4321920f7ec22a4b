package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SolarisQuests/documentanalysis/internal/common"
	"github.com/SolarisQuests/documentanalysis/internal/extract"
	"github.com/SolarisQuests/documentanalysis/internal/llm"
)

const systemPrompt = "You are a helpful assistant that fixes errors in OCR outputs " +
	"and provides correct data in the same JSON format."

// CorrectPage implements llm.PageCorrector using chat/completions. One call
// per page; the first choice's content, trimmed, becomes the corrected text.
func (c *Client) CorrectPage(ctx context.Context, page extract.PageText) (llm.CorrectedPage, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()

	c.log.Info("llm.correct.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"page_index", page.Index,
		"text_len", len(page.Text),
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"max_tokens":  c.cfg.MaxTokens,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": "Fix the errors and get correct data in same JSON format:\n" + page.Text},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.log.Error("llm.correct.http_error",
			"req_id", rid, "page_index", page.Index, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.CorrectedPage{}, common.NewAppError("CORRECTION_FAILED",
			fmt.Sprintf("correct page %d", page.Index), err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.correct.decode_error",
			"req_id", rid, "page_index", page.Index, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.CorrectedPage{}, common.NewAppError("CORRECTION_FAILED",
			fmt.Sprintf("decode completion for page %d", page.Index), err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.correct.no_choices",
			"req_id", rid, "page_index", page.Index,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.CorrectedPage{}, common.NewAppError("CORRECTION_FAILED",
			fmt.Sprintf("no choices in completion for page %d", page.Index), common.ErrCorrection)
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.log.Info("llm.correct.ok",
		"req_id", rid,
		"page_index", page.Index,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.CorrectedPage{Index: page.Index, Text: content}, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("openai response body close error", "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
