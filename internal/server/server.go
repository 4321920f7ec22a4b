package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	processor "github.com/SolarisQuests/documentanalysis/internal/pipeline"
)

// DocumentProcessor runs the extract/correct pipeline on a normalized PDF.
type DocumentProcessor interface {
	Process(ctx context.Context, path string) processor.Result
}

// Normalizer converts an uploaded document to a PDF-equivalent path.
type Normalizer interface {
	ToPDF(ctx context.Context, path string) (string, error)
}

// Archiver stores finished results. Optional; may be nil.
type Archiver interface {
	Archive(ctx context.Context, filename string, res processor.Result) error
}

// Server is the HTTP boundary in front of the processing pipeline.
type Server struct {
	logger     *slog.Logger
	normalizer Normalizer
	processor  DocumentProcessor
	archive    Archiver
	tempDir    string
}

func NewServer(logger *slog.Logger, normalizer Normalizer, proc DocumentProcessor, archive Archiver, tempDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Server{
		logger:     logger,
		normalizer: normalizer,
		processor:  proc,
		archive:    archive,
		tempDir:    tempDir,
	}
}

// Routes builds the HTTP handler for the service's two endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/upload", s.handleUpload)
	return mux
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"status": "success"})
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("response encode error", "error", err)
	}
}

// writeDetail mirrors the {"detail": ...} error envelope used by client and
// generic server errors.
func writeDetail(logger *slog.Logger, w http.ResponseWriter, status int, detail string) {
	writeJSON(logger, w, status, map[string]string{"detail": detail})
}
