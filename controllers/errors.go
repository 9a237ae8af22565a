package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/venue-booking/middlewares"
	"github.com/yeremiapane/venue-booking/store"
	"github.com/yeremiapane/venue-booking/utils"
)

// respondStoreError maps store errors onto HTTP status codes.
func respondStoreError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotAuthenticated):
		code = http.StatusUnauthorized
	case errors.Is(err, store.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, store.ErrInvalidInput):
		code = http.StatusBadRequest
	case errors.Is(err, store.ErrNoBooking):
		code = http.StatusConflict
	}
	if code == http.StatusInternalServerError {
		utils.ErrorLogger.WithField("path", c.FullPath()).Error(err)
	}
	utils.RespondError(c, code, err)
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s", param))
		return 0, false
	}
	return uint(id), true
}

func sessionStore(c *gin.Context) (*store.Store, bool) {
	st, ok := middlewares.CurrentStore(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, store.ErrNotAuthenticated)
		return nil, false
	}
	return st, true
}
