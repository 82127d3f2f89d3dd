package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hail/internal/repository"
	"hail/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidFare),
		errors.Is(err, service.ErrInvalidTargetDriver),
		errors.Is(err, service.ErrInvalidPickupLocation),
		errors.Is(err, service.ErrInvalidDropLocation),
		errors.Is(err, service.ErrInvalidOtp):
		return http.StatusBadRequest

	// Ownership / role
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden

	// State conflicts
	case errors.Is(err, service.ErrRideNotOpen),
		errors.Is(err, service.ErrAlreadyConfirmed),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrAlreadyTerminal),
		errors.Is(err, repository.ErrConflict):
		return http.StatusConflict

	// Default to internal server error; safe to retry
	default:
		return http.StatusInternalServerError
	}
}
