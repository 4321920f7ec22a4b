package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/SolarisQuests/documentanalysis/internal/common"
	"github.com/SolarisQuests/documentanalysis/internal/convert"
	"github.com/SolarisQuests/documentanalysis/internal/extract"
	"github.com/SolarisQuests/documentanalysis/internal/llm/openai"
	processor "github.com/SolarisQuests/documentanalysis/internal/pipeline"
	"github.com/SolarisQuests/documentanalysis/internal/repository"
	"github.com/SolarisQuests/documentanalysis/internal/server"
)

func main() {
	// Setup structured logger that outputs messages with variables but no time/level
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not load .env file", "error", err)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Archive store is provisioned only when a DSN is configured; requests
	// are served without it otherwise.
	var archive server.Archiver
	if cfg.Database.DSN != "" {
		pool, err := repository.Open(ctx, repository.Config{
			DSN:             cfg.Database.DSN,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, logger)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := repository.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}

		repo := repository.NewProcessedDocRepository(pool, logger)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure archive schema", "error", err)
			os.Exit(1)
		}
		archive = repo
	}

	converter := convert.NewConverter(convert.Config{Soffice: cfg.Convert.Soffice}, logger)

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

	proc := processor.NewProcessor(logger, extractor, corrector, cfg.LLM.Concurrency)
	srv := server.NewServer(logger, converter, proc, archive, cfg.Server.TempDir)

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: srv.Routes(),
	}

	logger.Info("documentanalysis listening", "addr", cfg.Server.HTTPAddr)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
}
