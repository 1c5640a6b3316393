package app

import (
	"github.com/gin-gonic/gin"

	"github.com/scholarai/scholar-backend/internal/platform/logger"
	"github.com/scholarai/scholar-backend/internal/server"
)

func wireRouter(log *logger.Logger, cfg Config, svcs Services, h Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Log:            log,
		AuthService:    svcs.Auth,
		HealthHandler:  h.Health,
		GuideHandler:   h.Guide,
		AllowedOrigins: cfg.AllowedOrigins,
		ServiceName:    cfg.ServiceName,
	})
}
