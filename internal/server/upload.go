package server

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/SolarisQuests/documentanalysis/constants"
	"github.com/SolarisQuests/documentanalysis/internal/common"
	processor "github.com/SolarisQuests/documentanalysis/internal/pipeline"
)

const unsupportedTypeDetail = "Unsupported document type. Only PDF, DOC, and DOCX files are allowed."

// maxUploadMemory bounds the multipart form held in memory before spilling to disk.
const maxUploadMemory = 32 << 20

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// handleUpload accepts one multipart file, normalizes it to PDF, runs the
// pipeline, and relays the result. Every temp file created for the request
// is removed before the handler exits, on all paths.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	rid := uuid.New().String()
	ctx := common.WithRequestID(r.Context(), rid)
	logger := s.logger.With("req_id", rid)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("upload.panic", "panic", rec)
			writeDetail(logger, w, http.StatusInternalServerError, "Internal server error")
		}
	}()

	if r.Method != http.MethodPost {
		writeDetail(logger, w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.Warn("upload.bad_multipart", "error", err)
		writeDetail(logger, w, http.StatusBadRequest, "multipart form with a file field is required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		logger.Warn("upload.missing_file_field", "error", err)
		writeDetail(logger, w, http.StatusBadRequest, "multipart form with a file field is required")
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Warn("upload file close error", "error", err)
		}
	}()

	ext := constants.NormalizeExt(filepath.Ext(header.Filename))
	if !constants.IsAllowedExt(ext) {
		logger.Warn("upload.unsupported_type", "filename", header.Filename, "ext", ext)
		writeDetail(logger, w, http.StatusBadRequest, unsupportedTypeDetail)
		return
	}

	logger.Info("upload.start", "filename", header.Filename, "bytes", header.Size, "ext", ext)

	tempPath := filepath.Join(s.tempDir, rid+"_"+sanitizeFilename(header.Filename))
	if err := persistUpload(file, tempPath); err != nil {
		logger.Error("upload.persist_failed", "path", tempPath, "error", err)
		writeDetail(logger, w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer s.removeTemp(logger, tempPath)

	workPath := tempPath
	if constants.IsWordProcessorExt(ext) {
		pdfPath, err := s.normalizer.ToPDF(ctx, tempPath)
		if err != nil {
			logger.Error("upload.convert_failed", "path", tempPath, "error", err)
			writeJSON(logger, w, http.StatusInternalServerError, processor.Failed(err.Error()))
			return
		}
		defer s.removeTemp(logger, pdfPath)
		workPath = pdfPath
	}

	result := s.processor.Process(ctx, workPath)

	if s.archive != nil && result.Status == processor.StatusProcessed {
		// Best-effort archive; the response never depends on it.
		if err := s.archive.Archive(ctx, header.Filename, result); err != nil {
			logger.Warn("upload.archive_failed", "filename", header.Filename, "error", err)
		}
	}

	status := http.StatusOK
	if result.Status != processor.StatusProcessed {
		status = http.StatusInternalServerError
	}
	logger.Info("upload.done", "status", result.Status, "pages", len(result.OCROutput))
	writeJSON(logger, w, status, result)
}

func persistUpload(src io.Reader, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close temp file: %w", err)
	}
	return nil
}

func (s *Server) removeTemp(logger *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("temp file remove error", "path", path, "error", err)
	}
}

// sanitizeFilename strips directory components and anything outside a safe
// character set, so the declared filename cannot traverse out of the temp dir.
func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	clean := unsafeFilenameChars.ReplaceAllString(base, "_")
	clean = strings.Trim(clean, "._")
	if clean == "" {
		return "upload"
	}
	return clean
}
