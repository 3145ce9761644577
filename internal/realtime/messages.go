package realtime

import (
	"time"

	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/domain"
)

// Inbound event names accepted on an authenticated connection.
const (
	EventJoinTrip       = "join-trip"
	EventLeaveTrip      = "leave-trip"
	EventUpdateLocation = "update-location"
)

// Outbound event names.
const (
	EventTripUpdate = "trip-update"
	EventError      = "error"
)

// inboundEvent is the envelope for client-sent events.
type inboundEvent struct {
	Event    string `json:"event"`
	TripID   string `json:"trip_id"`
	Location string `json:"location,omitempty"`
	Status   string `json:"status,omitempty"`
}

// ackMessage acknowledges a processed event back to its sender.
type ackMessage struct {
	Event string       `json:"event"`
	OK    bool         `json:"ok"`
	Room  string       `json:"room,omitempty"`
	Trip  *TripMessage `json:"trip,omitempty"`
}

// errorMessage is the generic failure envelope. It carries a human-readable
// reason but never raw internal error text.
type errorMessage struct {
	Event string `json:"event"`
	For   string `json:"for"`
	Error string `json:"error"`
}

// tripUpdateMessage is pushed to every connection in a trip's room after a
// successful update.
type tripUpdateMessage struct {
	Event string       `json:"event"`
	Trip  *TripMessage `json:"trip"`
}

// TripMessage is the wire representation of a trip with rider embedded.
type TripMessage struct {
	ID              string        `json:"id"`
	Destination     string        `json:"destination"`
	Status          string        `json:"status"`
	CurrentLocation string        `json:"current_location,omitempty"`
	CreatedAt       string        `json:"created_at"`
	UpdatedAt       string        `json:"updated_at"`
	Rider           *RiderMessage `json:"rider,omitempty"`
}

// RiderMessage is the wire representation of the owning identity.
type RiderMessage struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func newTripMessage(trip *domain.Trip) *TripMessage {
	msg := &TripMessage{
		ID:              trip.ID,
		Destination:     trip.Destination,
		Status:          string(trip.Status),
		CurrentLocation: trip.CurrentLocation,
		CreatedAt:       trip.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       trip.UpdatedAt.Format(time.RFC3339),
	}
	if trip.Rider != nil {
		msg.Rider = &RiderMessage{
			ID:    trip.Rider.ID,
			Email: trip.Rider.Email,
		}
	}
	return msg
}
