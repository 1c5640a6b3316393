package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scholarai/scholar-backend/internal/ingestion/transcribe"
	"github.com/scholarai/scholar-backend/internal/platform/apierr"
	"github.com/scholarai/scholar-backend/internal/platform/ctxutil"
	"github.com/scholarai/scholar-backend/internal/platform/localmedia"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
)

// Extractor produces the raw text of an uploaded file. The extension of the
// original filename decides the extraction route.
type Extractor interface {
	Extract(ctx context.Context, path string, originalName string) (string, error)
}

type extractor struct {
	log         *logger.Logger
	media       localmedia.Tools
	transcriber transcribe.Transcriber
}

func New(log *logger.Logger, media localmedia.Tools, transcriber transcribe.Transcriber) Extractor {
	return &extractor{
		log:         log.With("service", "Extractor"),
		media:       media,
		transcriber: transcriber,
	}
}

var audioVideoExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".mp4":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
}

func (e *extractor) Extract(ctx context.Context, path string, originalName string) (string, error) {
	ctx = ctxutil.Default(ctx)

	name := originalName
	if name == "" {
		name = filepath.Base(path)
	}
	ext := strings.ToLower(filepath.Ext(name))

	var (
		text string
		err  error
	)
	switch {
	case ext == ".txt" || ext == ".md":
		text, err = e.readPlain(path)
	case ext == ".pdf":
		text, err = e.media.ExtractPDFText(ctx, path)
	case ext == ".docx" || ext == ".doc":
		text, err = e.extractOffice(ctx, path)
	case audioVideoExts[ext]:
		text, err = e.transcriber.TranscribeFile(ctx, path, name)
	default:
		return "", apierr.UnsupportedKind(ext)
	}
	if err != nil {
		if apierr.IsCode(err, apierr.CodeTranscriptionFailed) {
			return "", err
		}
		return "", apierr.ExtractionFailed(fmt.Errorf("extract %q: %w", name, err))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", apierr.ExtractionFailed(fmt.Errorf("no text content in %q", name))
	}
	return text, nil
}

func (e *extractor) readPlain(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", path, err)
	}
	return string(raw), nil
}

func (e *extractor) extractOffice(ctx context.Context, path string) (string, error) {
	outDir, err := os.MkdirTemp("", "office_convert_*")
	if err != nil {
		return "", fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	pdfPath, err := e.media.ConvertOfficeToPDF(ctx, path, outDir)
	if err != nil {
		return "", err
	}
	return e.media.ExtractPDFText(ctx, pdfPath)
}
