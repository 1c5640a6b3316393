package gcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/scholarai/scholar-backend/internal/platform/ctxutil"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
)

// BucketService is the scratch blob store used by asynchronous
// transcription. Objects are short-lived and namespaced per request by the
// caller.
type BucketService interface {
	Upload(ctx context.Context, key string, r io.Reader) (string, error)
	UploadFile(ctx context.Context, key string, localPath string) (string, error)
	Delete(ctx context.Context, key string) error
	ObjectURI(key string) string
}

type BucketConfig struct {
	Name            string
	CredentialsFile string
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	name          string
}

func NewBucketService(log *logger.Logger, cfg BucketConfig) (BucketService, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("bucket name required")
	}

	opts := ClientOptions(cfg.CredentialsFile)
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	stClient, err := storage.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}

	return &bucketService{
		log:           log.With("service", "gcp.Bucket"),
		storageClient: stClient,
		name:          cfg.Name,
	}, nil
}

func (bs *bucketService) Upload(ctx context.Context, key string, r io.Reader) (string, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := bs.storageClient.Bucket(bs.name).Object(key).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close writer for %q: %w", key, err)
	}
	return bs.ObjectURI(key), nil
}

func (bs *bucketService) UploadFile(ctx context.Context, key string, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %q: %w", localPath, err)
	}
	defer f.Close()
	return bs.Upload(ctx, key, f)
}

func (bs *bucketService) Delete(ctx context.Context, key string) error {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := bs.storageClient.Bucket(bs.name).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("delete object %q in bucket %q: %w", key, bs.name, err)
	}
	return nil
}

func (bs *bucketService) ObjectURI(key string) string {
	return fmt.Sprintf("gs://%s/%s", bs.name, key)
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(s, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(s, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(s, ".flac"):
		return "audio/flac"
	case strings.HasSuffix(s, ".ogg"), strings.HasSuffix(s, ".opus"):
		return "audio/ogg"
	case strings.HasSuffix(s, ".mp4"), strings.HasSuffix(s, ".m4a"):
		return "audio/mp4"
	default:
		return ""
	}
}
