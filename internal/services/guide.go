package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scholarai/scholar-backend/internal/data/repos/guides"
	"github.com/scholarai/scholar-backend/internal/domain"
	"github.com/scholarai/scholar-backend/internal/ingestion/extractor"
	"github.com/scholarai/scholar-backend/internal/platform/apierr"
	"github.com/scholarai/scholar-backend/internal/platform/ctxutil"
	"github.com/scholarai/scholar-backend/internal/platform/dbctx"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
)

// GuideService owns the upload-to-guide pipeline and guide lifecycle.
type GuideService interface {
	CreateFromUpload(ctx context.Context, userID uuid.UUID, localPath string, originalName string, goals string) (*domain.Guide, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Guide, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.GuideSummary, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetSessionCompleted(ctx context.Context, id uuid.UUID, sessionIndex int, completed bool) (*domain.Guide, error)
}

type guideService struct {
	log       *logger.Logger
	extractor extractor.Extractor
	generator GuideGenerator
	repo      guides.GuideRepo
}

func NewGuideService(log *logger.Logger, ext extractor.Extractor, gen GuideGenerator, repo guides.GuideRepo) GuideService {
	return &guideService{
		log:       log.With("service", "GuideService"),
		extractor: ext,
		generator: gen,
		repo:      repo,
	}
}

func (s *guideService) CreateFromUpload(ctx context.Context, userID uuid.UUID, localPath string, originalName string, goals string) (*domain.Guide, error) {
	ctx = ctxutil.Default(ctx)

	sourceText, err := s.extractor.Extract(ctx, localPath, originalName)
	if err != nil {
		return nil, err
	}

	content := s.generator.Generate(ctx, sourceText, goals)
	if content.IsDegraded() {
		return nil, apierr.GenerationFailed(fmt.Errorf("guide generation failed for %q", originalName))
	}

	now := time.Now().UTC()
	guide := &domain.Guide{
		ID:             uuid.New(),
		UserID:         userID,
		Title:          content.Title,
		Summary:        content.Summary,
		Goals:          goals,
		SourceFilename: originalName,
		Topics:         content.Topics,
		StudyTips:      content.StudyTips,
		FlashCards:     content.FlashCards,
		Quiz:           content.Quiz,
		StudySchedule:  content.StudySchedule,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if extra, mErr := json.Marshal(map[string]any{
		"source_chars": len(sourceText),
	}); mErr == nil {
		guide.Extra = extra
	}

	if err := s.repo.Create(dbctx.New(ctx), guide); err != nil {
		return nil, err
	}
	s.log.Info("guide created", "guide_id", guide.ID, "user_id", userID, "file", originalName)
	return guide, nil
}

func (s *guideService) Get(ctx context.Context, id uuid.UUID) (*domain.Guide, error) {
	return s.repo.GetByID(dbctx.New(ctxutil.Default(ctx)), id)
}

func (s *guideService) List(ctx context.Context, userID uuid.UUID) ([]domain.GuideSummary, error) {
	return s.repo.ListByUser(dbctx.New(ctxutil.Default(ctx)), userID)
}

func (s *guideService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteByID(dbctx.New(ctxutil.Default(ctx)), id); err != nil {
		return err
	}
	s.log.Info("guide deleted", "guide_id", id)
	return nil
}

func (s *guideService) SetSessionCompleted(ctx context.Context, id uuid.UUID, sessionIndex int, completed bool) (*domain.Guide, error) {
	return s.repo.SetSessionCompleted(dbctx.New(ctxutil.Default(ctx)), id, sessionIndex, completed)
}
