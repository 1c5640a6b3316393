package app

import (
	"gorm.io/gorm"

	"github.com/scholarai/scholar-backend/internal/data/repos/guides"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
)

type Repos struct {
	Guides guides.GuideRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Guides: guides.NewGuideRepo(db, log),
	}
}
