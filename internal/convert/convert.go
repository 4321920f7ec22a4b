package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/SolarisQuests/documentanalysis/constants"
	"github.com/SolarisQuests/documentanalysis/internal/common"
)

type Config struct {
	Soffice string // binary name or absolute path; if empty -> "soffice"
}

// Converter normalizes uploaded documents to PDF. PDF input is returned
// unchanged; word-processor formats are converted next to the input file.
type Converter struct {
	cfg      Config
	runner   Runner
	logger   *slog.Logger
	validate func(path string) error
}

func NewConverter(cfg Config, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Soffice == "" {
		cfg.Soffice = "soffice"
	}
	return &Converter{
		cfg:    cfg,
		runner: execRunner{},
		logger: logger,
		validate: func(path string) error {
			return api.ValidateFile(path, nil)
		},
	}
}

// ToPDF returns a path to a PDF-equivalent of the given document.
// The input file is never deleted; the caller owns both paths.
func (c *Converter) ToPDF(ctx context.Context, path string) (string, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	if ext == "pdf" {
		return path, nil
	}
	if !constants.IsWordProcessorExt(ext) {
		return "", common.NewAppError("CONVERSION_FAILED",
			fmt.Sprintf("cannot convert %q to PDF", ext), common.ErrInvalidInput)
	}

	outPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".pdf"
	c.logger.Info("convert.start", "path", path, "out_path", outPath)

	// soffice --headless --convert-to pdf --outdir <dir> <in>
	_, errb, err := c.runner.Run(ctx, c.cfg.Soffice,
		"--headless", "--convert-to", "pdf", "--outdir", filepath.Dir(path), path)
	if err != nil {
		return "", common.NewAppError("CONVERSION_FAILED",
			fmt.Sprintf("convert %s: %s", filepath.Base(path), truncate(string(errb), 512)),
			common.ErrConversion)
	}

	if _, err := os.Stat(outPath); err != nil {
		c.logger.Error("convert.output_missing", "path", path, "out_path", outPath)
		return "", common.NewAppError("CONVERSION_FAILED",
			fmt.Sprintf("PDF conversion failed, output file not found: %s", outPath),
			common.ErrConversion)
	}
	if err := c.validate(outPath); err != nil {
		c.logger.Error("convert.output_invalid", "out_path", outPath, "error", err)
		return "", common.NewAppError("CONVERSION_FAILED",
			fmt.Sprintf("converted PDF is not readable: %s", outPath), common.ErrConversion)
	}

	c.logger.Info("convert.ok", "path", path, "out_path", outPath)
	return outPath, nil
}
