package app

import (
	"fmt"

	"github.com/scholarai/scholar-backend/internal/platform/gcp"
	"github.com/scholarai/scholar-backend/internal/platform/genai"
	"github.com/scholarai/scholar-backend/internal/platform/localmedia"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
)

type Clients struct {
	Speech gcp.Speech
	Bucket gcp.BucketService
	GenAI  genai.Client
	Media  localmedia.Tools
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	speech, err := gcp.NewSpeech(log, gcp.SpeechConfig{
		LanguageCode:    cfg.SpeechLanguage,
		CredentialsFile: cfg.GCPCredentialsFile,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init speech client: %w", err)
	}

	bucket, err := gcp.NewBucketService(log, gcp.BucketConfig{
		Name:            cfg.ScratchBucket,
		CredentialsFile: cfg.GCPCredentialsFile,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init bucket service: %w", err)
	}

	genaiClient, err := genai.NewClient(log, genai.Config{
		BaseURL:        cfg.GenAIBaseURL,
		APIKey:         cfg.GenAIAPIKey,
		Model:          cfg.GenAIModel,
		TimeoutSeconds: cfg.GenAITimeoutSeconds,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init genai client: %w", err)
	}

	return Clients{
		Speech: speech,
		Bucket: bucket,
		GenAI:  genaiClient,
		Media:  localmedia.New(log),
	}, nil
}
