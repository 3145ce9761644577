package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/auth"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/repository"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status
// code. Upstream and unexpected failures are logged and reported with a
// generic body rather than leaking internal error text.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code >= http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
		c.JSON(code, ErrorResponse{Error: "upstream unavailable"})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidDestination),
		errors.Is(err, service.ErrInvalidTargetState),
		errors.Is(err, service.ErrMissingLocation):
		return http.StatusBadRequest

	// Key-set fetch, identity sync and storage failures are all upstream
	// unavailability from the caller's point of view.
	case errors.Is(err, auth.ErrKeyFetch),
		errors.Is(err, service.ErrSyncFailure):
		return http.StatusBadGateway

	default:
		return http.StatusBadGateway
	}
}
