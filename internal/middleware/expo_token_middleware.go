package middleware

import (
	"github.com/emanuuele/girls-chat-api/internal/services"
	"github.com/emanuuele/girls-chat-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

const expoTokenHeader = "Expo-Notification-Token"

// ExpoTokenMiddleware picks up the push token mobile clients attach to every
// request and keeps it registered for the authenticated user. Registration
// is best effort and never blocks the request. Apply after AuthMiddleware.
func ExpoTokenMiddleware(pushService *services.PushService, l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(expoTokenHeader)
		if token != "" {
			if userID, ok := services.UserIDFromContext(c.Request.Context()); ok {
				if err := pushService.RegisterToken(c.Request.Context(), userID, token); err != nil && l != nil {
					l.WarnfCtx(c.Request.Context(), "expo token registration failed: %v", err)
				}
			}
		}
		c.Next()
	}
}
