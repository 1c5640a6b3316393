package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	speechpb "cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/scholarai/scholar-backend/internal/platform/apierr"
	"github.com/scholarai/scholar-backend/internal/platform/ctxutil"
	"github.com/scholarai/scholar-backend/internal/platform/gcp"
	"github.com/scholarai/scholar-backend/internal/platform/localmedia"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
)

// Transcriber turns a local audio/video file into plain text. Clips at or
// under the duration threshold are recognized synchronously from bytes;
// longer ones are staged in the scratch bucket and recognized by URI.
type Transcriber interface {
	TranscribeFile(ctx context.Context, path string, originalName string) (string, error)
}

type Config struct {
	// DurationThresholdSeconds is the longest clip recognized inline.
	DurationThresholdSeconds float64
	// AsyncCeiling bounds how long a long-running recognition may take.
	AsyncCeiling time.Duration
}

type transcriber struct {
	log    *logger.Logger
	media  localmedia.Tools
	speech gcp.Speech
	bucket gcp.BucketService

	threshold float64
	ceiling   time.Duration
}

func New(log *logger.Logger, media localmedia.Tools, speech gcp.Speech, bucket gcp.BucketService, cfg Config) Transcriber {
	threshold := cfg.DurationThresholdSeconds
	if threshold <= 0 {
		threshold = 55
	}
	ceiling := cfg.AsyncCeiling
	if ceiling <= 0 {
		ceiling = 10 * time.Minute
	}
	return &transcriber{
		log:       log.With("service", "Transcriber"),
		media:     media,
		speech:    speech,
		bucket:    bucket,
		threshold: threshold,
		ceiling:   ceiling,
	}
}

func (t *transcriber) TranscribeFile(ctx context.Context, path string, originalName string) (string, error) {
	ctx = ctxutil.Default(ctx)

	name := originalName
	if name == "" {
		name = filepath.Base(path)
	}
	encoding := encodingForExt(filepath.Ext(name))

	duration, err := t.media.ProbeDurationSeconds(ctx, path)
	if err != nil {
		// Unknown duration falls back to the inline path.
		t.log.Warn("duration probe failed, assuming short clip", "file", name, "error", err)
		duration = 0
	}

	var transcript string
	if duration > t.threshold {
		transcript, err = t.transcribeLong(ctx, path, name, encoding)
	} else {
		transcript, err = t.transcribeInline(ctx, path, encoding)
	}
	if err != nil {
		return "", apierr.TranscriptionFailed(fmt.Errorf("transcribe %q: %w", name, err))
	}
	return transcript, nil
}

func (t *transcriber) transcribeInline(ctx context.Context, path string, encoding speechpb.RecognitionConfig_AudioEncoding) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}
	return t.speech.Recognize(ctx, content, encoding)
}

func (t *transcriber) transcribeLong(ctx context.Context, path string, name string, encoding speechpb.RecognitionConfig_AudioEncoding) (string, error) {
	key := fmt.Sprintf("scratch_audio_%d_%s", time.Now().UnixNano(), sanitizeKeyPart(name))

	uri, err := t.bucket.UploadFile(ctx, key, path)
	if err != nil {
		return "", fmt.Errorf("stage scratch audio: %w", err)
	}
	defer func() {
		// Cleanup runs whether recognition succeeded or not, and must
		// survive request cancellation.
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if delErr := t.bucket.Delete(cleanupCtx, key); delErr != nil {
			t.log.Warn("scratch audio delete failed", "key", key, "error", delErr)
		}
	}()

	return t.speech.RecognizeURI(ctx, uri, encoding, t.ceiling)
}

func encodingForExt(ext string) speechpb.RecognitionConfig_AudioEncoding {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "wav":
		return speechpb.RecognitionConfig_LINEAR16
	case "flac":
		return speechpb.RecognitionConfig_FLAC
	case "ogg", "opus":
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_MP3
	}
}

func sanitizeKeyPart(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(filepath.Base(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
