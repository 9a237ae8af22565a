package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/venue-booking/session"
)

// WebSocketAuthMiddleware accepts the token as ?token= because browsers cannot
// set headers on a websocket handshake.
func WebSocketAuthMiddleware(sessions *session.Manager) gin.HandlerFunc {
	header := AuthMiddleware(sessions)
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			header(c)
			return
		}
		authenticate(c, sessions, token)
	}
}
