package services

import (
	"context"
	"fmt"

	"github.com/scholarai/scholar-backend/internal/platform/apierr"
	"github.com/scholarai/scholar-backend/internal/platform/ctxutil"
	"github.com/scholarai/scholar-backend/internal/platform/genai"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
)

// NudgeService produces a short motivational message keyed to the learner's
// progress through a schedule.
type NudgeService interface {
	Motivation(ctx context.Context, completed int, total int) (string, error)
}

type nudgeService struct {
	log   *logger.Logger
	genai genai.Client
}

func NewNudgeService(log *logger.Logger, genaiClient genai.Client) NudgeService {
	return &nudgeService{
		log:   log.With("service", "NudgeService"),
		genai: genaiClient,
	}
}

func (s *nudgeService) Motivation(ctx context.Context, completed int, total int) (string, error) {
	ctx = ctxutil.Default(ctx)

	if completed < 0 || total < 0 || completed > total {
		return "", apierr.InvalidRequest(fmt.Errorf("invalid progress %d/%d", completed, total))
	}

	prompt := fmt.Sprintf(
		"A learner has completed %d of %d study sessions in their plan. Write one short, warm, motivational message (at most two sentences) to keep them going. No hashtags, no emoji.",
		completed, total,
	)
	msg, err := s.genai.GenerateText(ctx, prompt)
	if err != nil {
		return "", apierr.GenerationFailed(fmt.Errorf("motivation message: %w", err))
	}
	return msg, nil
}
