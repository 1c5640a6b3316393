package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/scholarai/scholar-backend/internal/http/response"
	"github.com/scholarai/scholar-backend/internal/platform/apierr"
	"github.com/scholarai/scholar-backend/internal/platform/ctxutil"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
	"github.com/scholarai/scholar-backend/internal/services"
)

// Auth verifies the bearer token and attaches the caller identity to the
// request context. It also lifts an optional per-request generation key out
// of the X-Genai-Api-Key header.
func Auth(log *logger.Logger, auth services.AuthService) gin.HandlerFunc {
	mwLog := log.With("middleware", "Auth")
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			response.RespondAPIError(c, apierr.AuthFailed(fmt.Errorf("missing Authorization header")))
			c.Abort()
			return
		}

		userID, err := auth.VerifyToken(header)
		if err != nil {
			mwLog.Warn("token rejected", "error", err)
			response.RespondAPIError(c, err)
			c.Abort()
			return
		}

		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			TokenString: strings.TrimPrefix(header, "Bearer "),
			UserID:      userID,
		})
		if key := strings.TrimSpace(c.GetHeader("X-Genai-Api-Key")); key != "" {
			ctx = ctxutil.WithGenAIKey(ctx, key)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
