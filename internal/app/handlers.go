package app

import (
	"github.com/scholarai/scholar-backend/internal/http/handlers"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
)

type Handlers struct {
	Health *handlers.HealthHandler
	Guide  *handlers.GuideHandler
}

func wireHandlers(log *logger.Logger, svcs Services) Handlers {
	return Handlers{
		Health: handlers.NewHealthHandler(),
		Guide:  handlers.NewGuideHandler(log, svcs.Guides, svcs.Replanner, svcs.Nudge, svcs.Export),
	}
}
