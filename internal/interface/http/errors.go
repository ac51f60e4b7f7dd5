package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nwtrack/networth-api/internal/application"
	"github.com/nwtrack/networth-api/pkg/response"
)

// respondServiceError maps service sentinel errors onto HTTP statuses with
// caller-safe messages. Anything unrecognized is an internal fault; the
// detail stays in the logs.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "user not found", nil)
	case errors.Is(err, application.ErrAccountNotFound):
		response.Error(c, http.StatusNotFound, "account not found", nil)
	case errors.Is(err, application.ErrEmailTaken):
		response.Error(c, http.StatusConflict, "user exists already, please login instead", nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, application.ErrExportsDisabled):
		response.Error(c, http.StatusServiceUnavailable, "exports are not available", nil)
	default:
		response.Error(c, http.StatusInternalServerError, "something went wrong", nil)
	}
}
