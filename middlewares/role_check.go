package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/venue-booking/utils"
)

// RequireAdmin only lets identities whose profile has is_admin through.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, exists := CurrentIdentity(c)
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		if !identity.IsAdmin {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("admin access required"))
			c.Abort()
			return
		}

		c.Next()
	}
}
