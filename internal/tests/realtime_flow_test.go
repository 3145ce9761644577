package tests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/auth"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/domain"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/realtime"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/service"
)

// ──────────────────────────────────────────────
// REALTIME END-TO-END FLOW
// ──────────────────────────────────────────────

// realtimeHarness wires the full auth + trip + gateway stack over mock
// storage and exposes it behind a test websocket server.
type realtimeHarness struct {
	url         string
	tripRepo    *MockTripRepository
	tripService *service.TripService
}

func newRealtimeHarness(t *testing.T) *realtimeHarness {
	t.Helper()

	identityRepo := NewMockIdentityRepository()
	verifier := &StubVerifier{Claims: map[string]*auth.Claims{
		"rider-token":  {SubjectID: "rider-subject", Email: "rider@example.com"},
		"driver-token": {SubjectID: "driver-subject", Email: "driver@example.com"},
	}}
	roles := &StubRoles{Drivers: map[string]bool{"driver-subject": true}}
	authenticator := service.NewSessionAuthenticator(verifier, identityRepo, roles)

	tripRepo := NewMockTripRepository()
	tripService := service.NewTripService(tripRepo, NewMockTripCache(), NewMockLocationStore())

	gateway := realtime.NewGateway(authenticator, tripService, realtime.NewRoomRegistry())
	server := httptest.NewServer(http.HandlerFunc(gateway.Handle))
	t.Cleanup(server.Close)

	return &realtimeHarness{
		url:         "ws" + strings.TrimPrefix(server.URL, "http"),
		tripRepo:    tripRepo,
		tripService: tripService,
	}
}

// createTrip seeds a REQUESTED trip owned by the rider identity.
func (h *realtimeHarness) createTrip(t *testing.T) *domain.Trip {
	t.Helper()
	session := newPassengerSession("rider-subject", "rider@example.com")
	trip, err := h.tripService.Create(context.Background(), session, service.CreateTripRequest{
		Destination: "Av. Italia 1234",
	})
	if err != nil {
		t.Fatalf("trip seed failed: %v", err)
	}
	return trip
}

func (h *realtimeHarness) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, h.url+"?token="+token, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, payload map[string]any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, payload); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var msg map[string]any
	if err := wsjson.Read(ctx, conn, &msg); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return msg
}

func TestRealtimeFlow_UpdateWithoutJoinStillBroadcasts(t *testing.T) {
	t.Parallel()

	harness := newRealtimeHarness(t)
	trip := harness.createTrip(t)

	// A passenger watches the trip's room.
	watcher := harness.dial(t, "rider-token")
	sendEvent(t, watcher, map[string]any{"event": "join-trip", "trip_id": trip.ID})
	if ack := readEvent(t, watcher); ack["ok"] != true {
		t.Fatalf("watcher join failed: %v", ack)
	}

	// The driver pushes an update without joining first.
	driver := harness.dial(t, "driver-token")
	sendEvent(t, driver, map[string]any{
		"event":    "update-location",
		"trip_id":  trip.ID,
		"location": "-34.12,-56.12",
		"status":   string(domain.TripStatusInProgress),
	})

	ack := readEvent(t, driver)
	if ack["event"] != "update-location" || ack["ok"] != true {
		t.Fatalf("expected update ack, got %v", ack)
	}
	ackTrip, ok := ack["trip"].(map[string]any)
	if !ok || ackTrip["status"] != string(domain.TripStatusInProgress) {
		t.Fatalf("expected updated trip in ack, got %v", ack)
	}

	// The watcher receives the room push.
	push := readEvent(t, watcher)
	if push["event"] != "trip-update" {
		t.Fatalf("expected trip-update push, got %v", push)
	}
	pushed, ok := push["trip"].(map[string]any)
	if !ok || pushed["id"] != trip.ID {
		t.Fatalf("expected trip payload, got %v", push)
	}
	if pushed["status"] != string(domain.TripStatusInProgress) {
		t.Errorf("expected IN_PROGRESS push, got %v", pushed["status"])
	}

	// The update was persisted through the same path.
	stored := harness.tripRepo.GetTrip(trip.ID)
	if stored.Status != domain.TripStatusInProgress {
		t.Errorf("expected stored status IN_PROGRESS, got %s", stored.Status)
	}
}

func TestRealtimeFlow_PassengerUpdateForbidden(t *testing.T) {
	t.Parallel()

	harness := newRealtimeHarness(t)
	trip := harness.createTrip(t)

	rider := harness.dial(t, "rider-token")
	sendEvent(t, rider, map[string]any{
		"event":    "update-location",
		"trip_id":  trip.ID,
		"location": "-34.12,-56.12",
		"status":   string(domain.TripStatusInProgress),
	})

	msg := readEvent(t, rider)
	if msg["event"] != "error" || msg["for"] != "update-location" {
		t.Fatalf("expected error reply, got %v", msg)
	}
	if msg["error"] != service.ErrForbidden.Error() {
		t.Errorf("expected forbidden reason, got %v", msg["error"])
	}

	stored := harness.tripRepo.GetTrip(trip.ID)
	if stored.Status != domain.TripStatusRequested {
		t.Errorf("expected trip unchanged, got %s", stored.Status)
	}
}

func TestRealtimeFlow_JoinUnknownTrip(t *testing.T) {
	t.Parallel()

	harness := newRealtimeHarness(t)
	rider := harness.dial(t, "rider-token")

	sendEvent(t, rider, map[string]any{"event": "join-trip", "trip_id": uuid.New().String()})
	msg := readEvent(t, rider)
	if msg["event"] != "error" || msg["error"] != "trip not found" {
		t.Fatalf("expected trip-not-found error, got %v", msg)
	}
}

func TestRealtimeFlow_InvalidTokenClosedBeforeAnyEvent(t *testing.T) {
	t.Parallel()

	harness := newRealtimeHarness(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, harness.url+"?token=forged", nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	var msg map[string]any
	readErr := wsjson.Read(ctx, conn, &msg)
	if readErr == nil {
		t.Fatalf("expected silent close, got message %v", msg)
	}
	if websocket.CloseStatus(readErr) != websocket.StatusPolicyViolation {
		t.Errorf("expected policy violation close, got %v", readErr)
	}
}
