package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/scholarai/scholar-backend/internal/http/handlers"
	"github.com/scholarai/scholar-backend/internal/http/middleware"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
	"github.com/scholarai/scholar-backend/internal/services"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthService    services.AuthService
	HealthHandler  *handlers.HealthHandler
	GuideHandler   *handlers.GuideHandler
	AllowedOrigins []string
	ServiceName    string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.TraceContext())
	router.Use(middleware.RequestLog(cfg.Log))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", cfg.HealthHandler.Healthcheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(middleware.Auth(cfg.Log, cfg.AuthService))
	// Ingestion
	api.POST("/upload", cfg.GuideHandler.Upload)
	// Guides
	api.GET("/guides", cfg.GuideHandler.List)
	api.GET("/guide/:id", cfg.GuideHandler.Get)
	api.DELETE("/guide/:id", cfg.GuideHandler.Delete)
	// Progress + planning
	api.PUT("/guide/:id/progress", cfg.GuideHandler.UpdateProgress)
	api.POST("/guide/:id/replan", cfg.GuideHandler.Replan)
	// Motivation
	api.POST("/motivation", cfg.GuideHandler.Motivation)
	// Export
	api.GET("/export/:variant/:id", cfg.GuideHandler.Export)

	return router
}
