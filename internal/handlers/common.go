package handlers

import (
	"errors"
	"net/http"

	"form-builder-backend/internal/models"
	"form-builder-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Message string `json:"message" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"operation successful"`
}

// hideInternalErrors is set from APP_ENV at startup; in production 500
// bodies carry a generic message instead of the underlying error.
var hideInternalErrors bool

func HideInternalErrors(hide bool) {
	hideInternalErrors = hide
}

// respondError maps service errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Forbidden"})
	case errors.Is(err, services.ErrDuplicateSubmission):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrEmailRequired), errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrEmailTaken), errors.Is(err, services.ErrBadCredentials):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
	default:
		msg := "internal server error"
		if !hideInternalErrors {
			msg = err.Error()
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: msg})
	}
}

func callerIdentity(c *gin.Context) (uint, bool) {
	return c.GetUint("user_id"), c.GetString("role") == models.RoleAdmin
}
