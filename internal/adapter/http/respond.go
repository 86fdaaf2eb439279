package http

import (
	"errors"
	"net/http"

	"github.com/LakLN/Book-Garden-Server-v2/internal/adapter/http/middleware"
	"github.com/LakLN/Book-Garden-Server-v2/internal/logging"
	"github.com/LakLN/Book-Garden-Server-v2/internal/usecase"
	"github.com/gin-gonic/gin"
)

// GenericResponse is the envelope every operation returns: a success flag, a
// human-readable message and an optional payload. Internal faults are reduced
// to a generic message; details stay in the logs.
type GenericResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func ok(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: message, Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, GenericResponse{Success: false, Message: message})
}

// failErr maps the error taxonomy to HTTP statuses at the operation boundary.
func failErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, usecase.ErrForbidden):
		fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, usecase.ErrInvalidTransition),
		errors.Is(err, usecase.ErrInvalidReference):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrDuplicate):
		fail(c, http.StatusConflict, err.Error())
	default:
		logging.From(c).Error("internal error", "err", err)
		fail(c, http.StatusInternalServerError, "internal error")
	}
}

func callerID(c *gin.Context) (string, bool) {
	id := c.GetString(middleware.UserIDKey)
	if id == "" {
		fail(c, http.StatusUnauthorized, "missing caller identity")
		return "", false
	}
	return id, true
}
