package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusRequested  TripStatus = "REQUESTED"
	TripStatusAccepted   TripStatus = "ACCEPTED"
	TripStatusInProgress TripStatus = "IN_PROGRESS"
	TripStatusCompleted  TripStatus = "COMPLETED"
)

// ValidUpdateStatus reports whether s is a status a driver may move a trip
// to. REQUESTED is only reachable through trip creation.
func ValidUpdateStatus(s TripStatus) bool {
	switch s {
	case TripStatusAccepted, TripStatusInProgress, TripStatusCompleted:
		return true
	}
	return false
}

// Trip represents a tracked trip. RiderID references the identity that
// created it and is immutable after creation; no assigned driver is
// persisted. Trips are never deleted.
type Trip struct {
	ID              string
	RiderID         string
	Destination     string
	Status          TripStatus
	CurrentLocation string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Rider is the owning identity, populated on reads that embed it.
	Rider *Identity
}
