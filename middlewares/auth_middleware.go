package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/venue-booking/session"
	"github.com/yeremiapane/venue-booking/store"
	"github.com/yeremiapane/venue-booking/utils"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID    = "userID"
	ContextIdentity  = "identity"
	ContextToken     = "token"
	ContextSessionID = "sessionID"
	ContextStore     = "store"
)

// AuthMiddleware validates the bearer token and attaches the session store.
func AuthMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("format token tidak valid"))
			c.Abort()
			return
		}

		authenticate(c, sessions, strings.TrimPrefix(authHeader, "Bearer "))
	}
}

func authenticate(c *gin.Context, sessions *session.Manager, tokenString string) {
	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid or expired token"))
		c.Abort()
		return
	}

	identity := store.Identity{
		UserID:  claims.UserID,
		Email:   claims.Email,
		IsAdmin: claims.IsAdmin,
	}
	st := sessions.Resume(c.Request.Context(), claims.ID, identity, claims.Expiry())

	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextIdentity, identity)
	c.Set(ContextToken, tokenString)
	c.Set(ContextSessionID, claims.ID)
	c.Set(ContextStore, st)

	c.Next()
}

// CurrentStore returns the session store attached by AuthMiddleware.
func CurrentStore(c *gin.Context) (*store.Store, bool) {
	v, ok := c.Get(ContextStore)
	if !ok {
		return nil, false
	}
	st, ok := v.(*store.Store)
	return st, ok
}

// CurrentIdentity returns the identity attached by AuthMiddleware.
func CurrentIdentity(c *gin.Context) (store.Identity, bool) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return store.Identity{}, false
	}
	id, ok := v.(store.Identity)
	return id, ok
}
