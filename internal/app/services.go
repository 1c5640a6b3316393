package app

import (
	"fmt"

	"github.com/scholarai/scholar-backend/internal/ingestion/extractor"
	"github.com/scholarai/scholar-backend/internal/ingestion/transcribe"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
	"github.com/scholarai/scholar-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	Generator services.GuideGenerator
	Guides    services.GuideService
	Replanner services.Replanner
	Nudge     services.NudgeService
	Export    services.ExportService
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, repos Repos) (Services, error) {
	auth, err := services.NewAuthService(log, services.AuthConfig{
		Secret: cfg.JWTSecretKey,
		Issuer: cfg.JWTIssuer,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	transcriber := transcribe.New(log, clients.Media, clients.Speech, clients.Bucket, transcribe.Config{
		DurationThresholdSeconds: cfg.TranscribeThresholdSeconds,
		AsyncCeiling:             cfg.TranscribeAsyncCeiling,
	})
	ext := extractor.New(log, clients.Media, transcriber)

	generator := services.NewGuideGenerator(log, clients.GenAI)
	guideService := services.NewGuideService(log, ext, generator, repos.Guides)

	return Services{
		Auth:      auth,
		Generator: generator,
		Guides:    guideService,
		Replanner: services.NewReplanner(log, clients.GenAI, repos.Guides),
		Nudge:     services.NewNudgeService(log, clients.GenAI),
		Export:    services.NewExportService(log),
	}, nil
}
