package localmedia

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/scholarai/scholar-backend/internal/platform/ctxutil"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
)

// Tools is the glue around system binaries used for local media handling.
//
// REQUIRED BINARIES in the service runtime:
// - ffprobe for audio/video duration probing
// - pdftotext (poppler-utils) for PDF text extraction
// - libreoffice (soffice) for DOCX/DOC -> PDF conversion
type Tools interface {
	ProbeDurationSeconds(ctx context.Context, path string) (float64, error)
	ExtractPDFText(ctx context.Context, pdfPath string) (string, error)
	ConvertOfficeToPDF(ctx context.Context, inputPath string, outDir string) (string, error)
}

type tools struct {
	log *logger.Logger

	ffprobePath   string
	pdftotextPath string
	sofficePath   string

	defaultTimeout time.Duration
}

func New(log *logger.Logger) Tools {
	return &tools{
		log:            log.With("service", "LocalMedia"),
		ffprobePath:    "ffprobe",
		pdftotextPath:  "pdftotext",
		sofficePath:    "soffice",
		defaultTimeout: 5 * time.Minute,
	}
}

func (m *tools) ProbeDurationSeconds(ctx context.Context, path string) (float64, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, m.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe %q: %w: %s", path, err, strings.TrimSpace(errBuf.String()))
	}
	raw := strings.TrimSpace(out.String())
	dur, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration parse %q: %w", raw, err)
	}
	if dur < 0 {
		dur = 0
	}
	return dur, nil
}

func (m *tools) ExtractPDFText(ctx context.Context, pdfPath string) (string, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, m.defaultTimeout)
	defer cancel()

	// "-" writes the text to stdout, one page per form feed.
	cmd := exec.CommandContext(ctx, m.pdftotextPath, pdfPath, "-")
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext %q: %w: %s", pdfPath, err, strings.TrimSpace(errBuf.String()))
	}
	return out.String(), nil
}

func (m *tools) ConvertOfficeToPDF(ctx context.Context, inputPath string, outDir string) (string, error) {
	ctx = ctxutil.Default(ctx)
	if inputPath == "" {
		return "", fmt.Errorf("inputPath required")
	}
	if outDir == "" {
		return "", fmt.Errorf("outDir required")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir outDir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.defaultTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, m.sofficePath,
		"--headless",
		"--convert-to", "pdf",
		"--outdir", outDir,
		inputPath,
	)
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("soffice convert %q: %w: %s", inputPath, err, strings.TrimSpace(errBuf.String()))
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	pdfPath := filepath.Join(outDir, base+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("soffice produced no pdf at %q: %w", pdfPath, err)
	}
	return pdfPath, nil
}
