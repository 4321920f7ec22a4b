package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/SolarisQuests/documentanalysis/internal/common"
)

// Config for the Azure Document Intelligence client.
type Config struct {
	Endpoint     string        // e.g. https://<resource>.cognitiveservices.azure.com
	APIKey       string        // if empty, falls back to env AZURE_OCR_KEY
	APIVersion   string        // default 2023-07-31
	ModelID      string        // default "prebuilt-document"
	PollInterval time.Duration // delay between result polls
	Timeout      time.Duration // overall analyze deadline
}

// AzureClient implements TextExtractor against the Document Intelligence
// analyze REST API: submit bytes, then poll the returned operation until the
// service finishes.
type AzureClient struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewAzureClient(cfg Config, logger *slog.Logger) *AzureClient {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("AZURE_OCR_KEY")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2023-07-31"
	}
	if cfg.ModelID == "" {
		cfg.ModelID = "prebuilt-document"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AzureClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logger,
	}
}

// analyzeResponse is the subset of the service's result payload we consume.
type analyzeResponse struct {
	Status        string `json:"status"`
	Error         *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	AnalyzeResult *struct {
		Pages []struct {
			PageNumber int `json:"pageNumber"`
			Lines      []struct {
				Content string `json:"content"`
			} `json:"lines"`
		} `json:"pages"`
	} `json:"analyzeResult"`
}

// Extract submits the file to the analyze endpoint and blocks until the
// long-running operation completes. Service pages are 1-based; results are
// returned under 0-based indices. A zero-page result is an empty slice, not
// an error.
func (c *AzureClient) Extract(ctx context.Context, path string) ([]PageText, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewAppError("EXTRACTION_FAILED",
			fmt.Sprintf("read document: %v", err), common.ErrExtraction)
	}

	c.log.Info("ocr.analyze.start",
		"req_id", rid,
		"model_id", c.cfg.ModelID,
		"bytes", len(data),
	)

	opURL, err := c.submit(ctx, data)
	if err != nil {
		c.log.Error("ocr.analyze.submit_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.NewAppError("EXTRACTION_FAILED",
			fmt.Sprintf("submit document for analysis: %v", err), common.ErrExtraction)
	}

	res, err := c.poll(ctx, opURL, rid)
	if err != nil {
		c.log.Error("ocr.analyze.poll_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.NewAppError("EXTRACTION_FAILED",
			fmt.Sprintf("await analysis result: %v", err), common.ErrExtraction)
	}

	pages := flattenPages(res)
	c.log.Info("ocr.analyze.ok",
		"req_id", rid,
		"pages", len(pages),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return pages, nil
}

// submit POSTs the document bytes and returns the Operation-Location URL.
func (c *AzureClient) submit(ctx context.Context, data []byte) (string, error) {
	url := fmt.Sprintf("%s/formrecognizer/documentModels/%s:analyze?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.ModelID, c.cfg.APIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("analyze request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Warn("ocr response body close error", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("analyze status %d: %s", resp.StatusCode, string(body))
	}

	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", fmt.Errorf("analyze response missing Operation-Location header")
	}
	return opURL, nil
}

// poll GETs the operation URL until a terminal status or the configured deadline.
func (c *AzureClient) poll(ctx context.Context, opURL, rid string) (*analyzeResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	for {
		res, err := c.fetchResult(ctx, opURL)
		if err != nil {
			return nil, err
		}

		switch res.Status {
		case "succeeded":
			return res, nil
		case "failed":
			if res.Error != nil {
				return nil, fmt.Errorf("analysis failed: %s: %s", res.Error.Code, res.Error.Message)
			}
			return nil, fmt.Errorf("analysis failed")
		}

		c.log.Debug("ocr.analyze.poll", "req_id", rid, "status", res.Status)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("analysis did not complete: %w", ctx.Err())
		case <-time.After(c.cfg.PollInterval):
		}
	}
}

func (c *AzureClient) fetchResult(ctx context.Context, opURL string) (*analyzeResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Warn("ocr response body close error", "error", err)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read poll response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("poll status %d: %s", resp.StatusCode, string(raw))
	}

	var out analyzeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode poll response: %w", err)
	}
	return &out, nil
}

// flattenPages joins each page's lines with single spaces, in service order,
// and shifts the service's 1-based page numbers down to 0-based indices.
func flattenPages(res *analyzeResponse) []PageText {
	if res.AnalyzeResult == nil || len(res.AnalyzeResult.Pages) == 0 {
		return []PageText{}
	}
	pages := make([]PageText, 0, len(res.AnalyzeResult.Pages))
	for _, p := range res.AnalyzeResult.Pages {
		lines := make([]string, 0, len(p.Lines))
		for _, l := range p.Lines {
			lines = append(lines, l.Content)
		}
		pages = append(pages, PageText{
			Index: p.PageNumber - 1,
			Text:  strings.Join(lines, " "),
		})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })
	return pages
}
