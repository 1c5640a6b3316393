package guides

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scholarai/scholar-backend/internal/domain"
	"github.com/scholarai/scholar-backend/internal/platform/apierr"
	"github.com/scholarai/scholar-backend/internal/platform/dbctx"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
)

// GuideRepo persists study guides. Every write goes through a transaction so
// a guide record is always observed whole.
type GuideRepo interface {
	Create(c dbctx.Context, guide *domain.Guide) error
	GetByID(c dbctx.Context, id uuid.UUID) (*domain.Guide, error)
	ListByUser(c dbctx.Context, userID uuid.UUID) ([]domain.GuideSummary, error)
	UpdateSchedule(c dbctx.Context, id uuid.UUID, schedule []domain.StudySession, explanation string) error
	SetSessionCompleted(c dbctx.Context, id uuid.UUID, sessionIndex int, completed bool) (*domain.Guide, error)
	DeleteByID(c dbctx.Context, id uuid.UUID) error
}

type guideRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGuideRepo(db *gorm.DB, log *logger.Logger) GuideRepo {
	return &guideRepo{
		db:  db,
		log: log.With("repo", "GuideRepo"),
	}
}

func (r *guideRepo) conn(c dbctx.Context) *gorm.DB {
	if c.Tx != nil {
		return c.Tx.WithContext(c.Ctx)
	}
	return r.db.WithContext(c.Ctx)
}

func (r *guideRepo) Create(c dbctx.Context, guide *domain.Guide) error {
	if guide == nil {
		return fmt.Errorf("guide required")
	}
	if guide.ID == uuid.Nil {
		guide.ID = uuid.New()
	}
	if err := r.conn(c).Create(guide).Error; err != nil {
		return fmt.Errorf("create guide: %w", err)
	}
	return nil
}

func (r *guideRepo) GetByID(c dbctx.Context, id uuid.UUID) (*domain.Guide, error) {
	var guide domain.Guide
	err := r.conn(c).Where("id = ?", id).First(&guide).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFound(fmt.Sprintf("guide %s", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get guide %s: %w", id, err)
	}
	return &guide, nil
}

func (r *guideRepo) ListByUser(c dbctx.Context, userID uuid.UUID) ([]domain.GuideSummary, error) {
	var rows []domain.Guide
	err := r.conn(c).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list guides for user %s: %w", userID, err)
	}
	out := make([]domain.GuideSummary, 0, len(rows))
	for _, g := range rows {
		out = append(out, domain.GuideSummary{
			ID:             g.ID,
			Title:          g.Title,
			SourceFilename: g.SourceFilename,
			CreatedAt:      g.CreatedAt,
		})
	}
	return out, nil
}

func (r *guideRepo) UpdateSchedule(c dbctx.Context, id uuid.UUID, schedule []domain.StudySession, explanation string) error {
	return r.conn(c).Transaction(func(tx *gorm.DB) error {
		var guide domain.Guide
		err := tx.Where("id = ?", id).First(&guide).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound(fmt.Sprintf("guide %s", id))
		}
		if err != nil {
			return fmt.Errorf("load guide %s: %w", id, err)
		}

		guide.StudySchedule = schedule
		guide.PlanExplanation = explanation
		if err := tx.Model(&guide).
			Select("study_schedule", "plan_explanation").
			Updates(&guide).Error; err != nil {
			return fmt.Errorf("update schedule for %s: %w", id, err)
		}
		return nil
	})
}

func (r *guideRepo) SetSessionCompleted(c dbctx.Context, id uuid.UUID, sessionIndex int, completed bool) (*domain.Guide, error) {
	var updated *domain.Guide
	err := r.conn(c).Transaction(func(tx *gorm.DB) error {
		var guide domain.Guide
		err := tx.Where("id = ?", id).First(&guide).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound(fmt.Sprintf("guide %s", id))
		}
		if err != nil {
			return fmt.Errorf("load guide %s: %w", id, err)
		}

		if sessionIndex < 0 || sessionIndex >= len(guide.StudySchedule) {
			return apierr.IndexOutOfRange(sessionIndex, len(guide.StudySchedule))
		}

		guide.StudySchedule[sessionIndex].Completed = completed
		if err := tx.Model(&guide).
			Select("study_schedule").
			Updates(&guide).Error; err != nil {
			return fmt.Errorf("update session %d for %s: %w", sessionIndex, id, err)
		}
		updated = &guide
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *guideRepo) DeleteByID(c dbctx.Context, id uuid.UUID) error {
	res := r.conn(c).Where("id = ?", id).Delete(&domain.Guide{})
	if res.Error != nil {
		return fmt.Errorf("delete guide %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apierr.NotFound(fmt.Sprintf("guide %s", id))
	}
	return nil
}
