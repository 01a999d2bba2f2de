package handlers

import (
	"errors"
	"net/http"

	"mnist-dashboard/internal/core/domain"

	"github.com/gin-gonic/gin"
)

// statusFor maps a domain error to an HTTP status code.
func statusFor(err error) int {
	switch {
	// Bad request / validation errors
	case errors.Is(err, domain.ErrInvalidCount):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, domain.ErrRunNotFound):
		return http.StatusNotFound

	// Service unavailable errors
	case errors.Is(err, domain.ErrDataUnavailable),
		errors.Is(err, domain.ErrTraining),
		errors.Is(err, domain.ErrModelNotReady):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

func mapDomainError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError && !errors.Is(err, domain.ErrInference) {
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
