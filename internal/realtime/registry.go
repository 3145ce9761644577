package realtime

import "sync"

// subscriber receives broadcast payloads. Delivery is best-effort; a
// subscriber that cannot be written to is simply skipped.
type subscriber interface {
	deliver(payload any)
}

// RoomName returns the room identifier for a trip.
func RoomName(tripID string) string {
	return "trip:" + tripID
}

// RoomRegistry maps trip ids to the live connections subscribed to them.
// It is in-process shared state touched by every connection's goroutine,
// so all access goes through the mutex.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]subscriber
}

// NewRoomRegistry creates an empty registry.
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[string]map[string]subscriber)}
}

// Join subscribes a connection to a trip's room. Idempotent.
func (r *RoomRegistry) Join(tripID, connID string, sub subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[tripID]
	if !ok {
		room = make(map[string]subscriber)
		r.rooms[tripID] = room
	}
	room[connID] = sub
}

// Leave unsubscribes a connection from a trip's room. No-op if absent.
func (r *RoomRegistry) Leave(tripID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[tripID]
	if !ok {
		return
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(r.rooms, tripID)
	}
}

// Broadcast delivers a payload to every connection joined to the trip's
// room. Broadcasting to an empty room is a no-op; one slow or failed
// delivery does not abort the others.
func (r *RoomRegistry) Broadcast(tripID string, payload any) {
	r.mu.RLock()
	subs := make([]subscriber, 0, len(r.rooms[tripID]))
	for _, sub := range r.rooms[tripID] {
		subs = append(subs, sub)
	}
	r.mu.RUnlock()

	for _, sub := range subs {
		sub.deliver(payload)
	}
}

// Disconnect removes a connection from every room it had joined.
func (r *RoomRegistry) Disconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for tripID, room := range r.rooms {
		delete(room, connID)
		if len(room) == 0 {
			delete(r.rooms, tripID)
		}
	}
}

// RoomSize returns the number of connections joined to a trip's room.
func (r *RoomRegistry) RoomSize(tripID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[tripID])
}
