package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridehail/internal/domain"
	"ridehail/internal/repository"
	"ridehail/internal/service"
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
	var transitionErr *domain.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return http.StatusConflict
	}

	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidPassengerID),
		errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidPickupLocation),
		errors.Is(err, service.ErrInvalidDestinationLocation),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrMissingPassengerLocation):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrRideNotInRequestedState),
		errors.Is(err, service.ErrMatchingInProgress),
		errors.Is(err, service.ErrRideAlreadyCancelled),
		errors.Is(err, service.ErrRideNotCompleted),
		errors.Is(err, service.ErrMissingFareInputs):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrDriverNotAssignedToRide),
		errors.Is(err, service.ErrDriverNotActive):
		return http.StatusForbidden

	// Service unavailable
	case errors.Is(err, service.ErrNoDriverAvailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
