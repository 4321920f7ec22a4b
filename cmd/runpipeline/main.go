package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/SolarisQuests/documentanalysis/constants"
	"github.com/SolarisQuests/documentanalysis/internal/common"
	"github.com/SolarisQuests/documentanalysis/internal/convert"
	"github.com/SolarisQuests/documentanalysis/internal/extract"
	"github.com/SolarisQuests/documentanalysis/internal/llm/openai"
	processor "github.com/SolarisQuests/documentanalysis/internal/pipeline"
)

// runpipeline runs the full convert/extract/correct pipeline on a local file
// and prints the result JSON. Useful for exercising the external services
// without the HTTP layer.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runpipeline <document-path>")
		os.Exit(2)
	}
	path := os.Args[1]

	ext := constants.NormalizeExt(filepath.Ext(path))
	if !constants.IsAllowedExt(ext) {
		logger.Error("unsupported document type", "path", path, "ext", ext)
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not load .env file", "error", err)
	}
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	workPath := path
	if constants.IsWordProcessorExt(ext) {
		converter := convert.NewConverter(convert.Config{Soffice: cfg.Convert.Soffice}, logger)
		pdfPath, err := converter.ToPDF(ctx, path)
		if err != nil {
			logger.Error("conversion failed", "path", path, "error", err)
			os.Exit(1)
		}
		defer func() {
			if rerr := os.Remove(pdfPath); rerr != nil {
				logger.Warn("converted pdf remove error", "path", pdfPath, "error", rerr)
			}
		}()
		workPath = pdfPath
	}

	extractor := extract.NewAzureClient(extract.Config{
		Endpoint:     cfg.OCR.Endpoint,
		APIKey:       cfg.OCR.APIKey,
		APIVersion:   cfg.OCR.APIVersion,
		ModelID:      cfg.OCR.ModelID,
		PollInterval: cfg.OCR.PollInterval,
		Timeout:      cfg.OCR.Timeout,
	}, logger)
	corrector := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	p := processor.NewProcessor(logger, extractor, corrector, cfg.LLM.Concurrency)

	start := time.Now()
	result := p.Process(ctx, workPath)
	dur := time.Since(start)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("marshal result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if result.Status != processor.StatusProcessed {
		logger.Error("pipeline failed", "message", result.Message, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}
	logger.Info("pipeline OK", "pages", len(result.OCROutput), "duration_ms", dur.Milliseconds())
}
