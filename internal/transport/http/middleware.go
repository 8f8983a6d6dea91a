package http

import (
	"cancellation-service/internal/auth"
	"cancellation-service/internal/service"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthRequired validates the Bearer token via the identity collaborator and
// injects userID/role into the request context for the service layer.
func AuthRequired(authClient *auth.Client, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, NewError("unauthorized", "missing Authorization header"))
			return
		}
		token, ok := extractBearerToken(authz)
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, NewError("unauthorized", "invalid Authorization header"))
			return
		}

		res, err := authClient.Introspect(c.Request.Context(), token)
		if err != nil || !res.Active {
			if err != nil {
				log.Warn("introspect failed", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, NewError("unauthorized", "invalid token"))
			return
		}

		userID, err := uuid.Parse(res.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, NewError("unauthorized", "invalid token subject"))
			return
		}

		ctx := service.WithUserID(c.Request.Context(), userID)
		ctx = service.WithRole(ctx, service.Role(res.Role))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearerToken(authz string) (string, bool) {
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
