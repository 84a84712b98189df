package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"ooru-foods/models"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	var validation *models.ValidationError

	switch {
	case errors.As(err, &validation):
		status = http.StatusUnprocessableEntity
		message = validation.Message
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, models.ErrEmptyCart), errors.Is(err, models.ErrInvalidPromo):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrBackendUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusRequestTimeout
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), message, "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(status, models.ErrorResponse{
		Success: false,
		Message: message,
		Error:   err.Error(),
	})
}

func respondBadRequest(c *gin.Context, message string, err error) {
	resp := models.ErrorResponse{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}
