package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/domain"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/middleware"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// CreateTripRequest is the HTTP request body for requesting a trip.
type CreateTripRequest struct {
	Destination string `json:"destination"`
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	ID              string         `json:"id"`
	Destination     string         `json:"destination"`
	Status          string         `json:"status"`
	CurrentLocation string         `json:"current_location,omitempty"`
	CreatedAt       string         `json:"created_at"`
	UpdatedAt       string         `json:"updated_at"`
	Rider           *RiderResponse `json:"rider,omitempty"`
}

// RiderResponse contains the embedded rider identity.
type RiderResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LocationResponse is the HTTP response for live trip location reads.
type LocationResponse struct {
	TripID   string `json:"trip_id"`
	Location string `json:"location"`
}

func newTripResponse(trip *domain.Trip) TripResponse {
	response := TripResponse{
		ID:              trip.ID,
		Destination:     trip.Destination,
		Status:          string(trip.Status),
		CurrentLocation: trip.CurrentLocation,
		CreatedAt:       trip.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       trip.UpdatedAt.Format(time.RFC3339),
	}
	if trip.Rider != nil {
		response.Rider = &RiderResponse{
			ID:    trip.Rider.ID,
			Email: trip.Rider.Email,
		}
	}
	return response
}

// CreateTrip handles POST /v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidDestination)
		return
	}

	trip, err := h.tripService.Create(c.Request.Context(), middleware.Session(c), service.CreateTripRequest{
		Destination: req.Destination,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, newTripResponse(trip))
}

// ListActive handles GET /v1/trips/active
func (h *TripHandler) ListActive(c *gin.Context) {
	trips, err := h.tripService.ListActive(c.Request.Context(), middleware.Session(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, newTripResponse(trip))
	}

	respondJSON(c, http.StatusOK, response)
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newTripResponse(trip))
}

// GetLiveLocation handles GET /v1/trips/:id/location
func (h *TripHandler) GetLiveLocation(c *gin.Context) {
	tripID := c.Param("id")

	location, err := h.tripService.LiveLocation(c.Request.Context(), tripID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, LocationResponse{
		TripID:   tripID,
		Location: location,
	})
}
