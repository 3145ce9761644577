package realtime

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/domain"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/repository"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/service"
)

const defaultWriteTimeout = 5 * time.Second

// Authenticator produces an authenticated session from a raw bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*domain.Session, error)
}

// TripAPI is the slice of the trip service the gateway drives.
type TripAPI interface {
	Exists(ctx context.Context, tripID string) error
	UpdateStatus(ctx context.Context, session *domain.Session, req service.UpdateStatusRequest) (*domain.Trip, error)
}

// Gateway upgrades HTTP requests to websocket connections, authenticates
// them once at connect, and then processes trip events one at a time per
// connection in arrival order.
type Gateway struct {
	auth         Authenticator
	trips        TripAPI
	rooms        *RoomRegistry
	writeTimeout time.Duration
}

// NewGateway creates a new Gateway.
func NewGateway(auth Authenticator, trips TripAPI, rooms *RoomRegistry) *Gateway {
	return &Gateway{
		auth:         auth,
		trips:        trips,
		rooms:        rooms,
		writeTimeout: defaultWriteTimeout,
	}
}

// Handle serves one websocket connection. Authentication failures close
// the connection without emitting any event so nothing about the
// verification outcome leaks to unauthenticated peers.
func (g *Gateway) Handle(w http.ResponseWriter, r *http.Request) {
	token := tokenFromRequest(r)
	if token == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}

	ctx := r.Context()
	session, err := g.auth.Authenticate(ctx, token)
	if err != nil {
		_ = conn.Close(websocket.StatusPolicyViolation, "")
		return
	}

	cl := &client{
		id:           session.ConnectionID,
		session:      session,
		conn:         conn,
		writeTimeout: g.writeTimeout,
	}
	defer func() {
		g.rooms.Disconnect(cl.id)
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}()

	// One event at a time: the read loop is the connection's actor.
	for {
		var evt inboundEvent
		if err := wsjson.Read(ctx, conn, &evt); err != nil {
			return
		}
		g.dispatch(ctx, cl, evt)
	}
}

// tokenFromRequest extracts the bearer token from the handshake: the
// "token" query parameter is the primary channel, the Authorization
// header the fallback.
func tokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func (g *Gateway) dispatch(ctx context.Context, cl *client, evt inboundEvent) {
	switch evt.Event {
	case EventJoinTrip:
		g.handleJoin(ctx, cl, evt)
	case EventLeaveTrip:
		g.handleLeave(cl, evt)
	case EventUpdateLocation:
		g.handleUpdateLocation(ctx, cl, evt)
	default:
		cl.deliver(errorMessage{Event: EventError, For: evt.Event, Error: "unknown event"})
	}
}

// handleJoin subscribes the connection to a trip's room after verifying
// the trip exists. Failure keeps the connection open.
func (g *Gateway) handleJoin(ctx context.Context, cl *client, evt inboundEvent) {
	if err := g.trips.Exists(ctx, evt.TripID); err != nil {
		cl.deliver(errorMessage{Event: EventError, For: EventJoinTrip, Error: failureReason(err)})
		return
	}
	g.rooms.Join(evt.TripID, cl.id, cl)
	cl.deliver(ackMessage{Event: EventJoinTrip, OK: true, Room: RoomName(evt.TripID)})
}

func (g *Gateway) handleLeave(cl *client, evt inboundEvent) {
	g.rooms.Leave(evt.TripID, cl.id)
	cl.deliver(ackMessage{Event: EventLeaveTrip, OK: true, Room: RoomName(evt.TripID)})
}

// handleUpdateLocation applies a status transition, joins the updating
// connection to the trip's room, and fans the updated trip out to every
// subscriber.
func (g *Gateway) handleUpdateLocation(ctx context.Context, cl *client, evt inboundEvent) {
	trip, err := g.trips.UpdateStatus(ctx, cl.session, service.UpdateStatusRequest{
		TripID:   evt.TripID,
		Status:   domain.TripStatus(evt.Status),
		Location: evt.Location,
	})
	if err != nil {
		cl.deliver(errorMessage{Event: EventError, For: EventUpdateLocation, Error: failureReason(err)})
		return
	}

	g.rooms.Join(trip.ID, cl.id, cl)

	msg := newTripMessage(trip)
	cl.deliver(ackMessage{Event: EventUpdateLocation, OK: true, Trip: msg})
	g.rooms.Broadcast(trip.ID, tripUpdateMessage{Event: EventTripUpdate, Trip: msg})
}

// failureReason maps an error to the human-readable reason surfaced on the
// wire. Unexpected errors are logged and reported generically.
func failureReason(err error) string {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "trip not found"
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidTargetState),
		errors.Is(err, service.ErrMissingLocation):
		return err.Error()
	default:
		log.Printf("realtime operation failed: %v", err)
		return "operation failed"
	}
}

// client is the per-connection state: an authenticated session plus a
// write-serialized websocket connection.
type client struct {
	id           string
	session      *domain.Session
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu sync.Mutex
}

// deliver writes a payload with a bounded timeout. Errors are swallowed;
// a dead connection is reaped by its own read loop.
func (c *client) deliver(payload any) {
	ctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = wsjson.Write(ctx, c.conn, payload)
}
