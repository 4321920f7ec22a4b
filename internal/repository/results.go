package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	processor "github.com/SolarisQuests/documentanalysis/internal/pipeline"
)

const processedDocumentsDDL = `
CREATE TABLE IF NOT EXISTS processed_documents (
    id            UUID PRIMARY KEY,
    filename      TEXT        NOT NULL,
    status        TEXT        NOT NULL,
    page_count    INTEGER     NOT NULL,
    result        JSONB       NOT NULL,
    processed_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// ProcessedDocRepository archives pipeline results. Writes are best-effort:
// the request path never depends on them.
type ProcessedDocRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewProcessedDocRepository(pool *pgxpool.Pool, logger *slog.Logger) *ProcessedDocRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessedDocRepository{pool: pool, logger: logger}
}

// EnsureSchema creates the archive table if it does not exist.
func (r *ProcessedDocRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, processedDocumentsDDL); err != nil {
		return fmt.Errorf("ensure processed_documents schema: %w", err)
	}
	return nil
}

// Archive stores one pipeline result under a fresh id.
func (r *ProcessedDocRepository) Archive(ctx context.Context, filename string, res processor.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	id := uuid.New()
	start := time.Now()
	_, err = r.pool.Exec(ctx,
		`INSERT INTO processed_documents (id, filename, status, page_count, result)
		 VALUES ($1, $2, $3, $4, $5)`,
		id, filename, res.Status, len(res.OCROutput), payload,
	)
	if err != nil {
		return fmt.Errorf("insert processed document: %w", err)
	}

	r.logger.Info("archive.ok",
		"id", id,
		"filename", filename,
		"status", res.Status,
		"pages", len(res.OCROutput),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
