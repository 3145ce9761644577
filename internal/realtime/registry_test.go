package realtime

import (
	"sync"
	"testing"
)

// recordingSubscriber captures delivered payloads.
type recordingSubscriber struct {
	mu       sync.Mutex
	payloads []any
}

func (s *recordingSubscriber) deliver(payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
}

func (s *recordingSubscriber) received() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.payloads...)
}

func TestRoomRegistry_JoinIsIdempotent(t *testing.T) {
	t.Parallel()

	registry := NewRoomRegistry()
	sub := &recordingSubscriber{}

	registry.Join("trip-1", "conn-1", sub)
	registry.Join("trip-1", "conn-1", sub)

	if size := registry.RoomSize("trip-1"); size != 1 {
		t.Errorf("expected room size 1 after duplicate join, got %d", size)
	}

	registry.Broadcast("trip-1", "payload")
	if got := sub.received(); len(got) != 1 {
		t.Errorf("expected a single delivery, got %d", len(got))
	}
}

func TestRoomRegistry_LeaveWithoutJoinIsNoop(t *testing.T) {
	t.Parallel()

	registry := NewRoomRegistry()
	registry.Leave("trip-1", "conn-1")

	if size := registry.RoomSize("trip-1"); size != 0 {
		t.Errorf("expected empty room, got size %d", size)
	}
}

func TestRoomRegistry_BroadcastToEmptyRoom(t *testing.T) {
	t.Parallel()

	registry := NewRoomRegistry()
	// Must not panic or block.
	registry.Broadcast("trip-1", "payload")
}

func TestRoomRegistry_BroadcastReachesAllMembers(t *testing.T) {
	t.Parallel()

	registry := NewRoomRegistry()
	first := &recordingSubscriber{}
	second := &recordingSubscriber{}
	other := &recordingSubscriber{}

	registry.Join("trip-1", "conn-1", first)
	registry.Join("trip-1", "conn-2", second)
	registry.Join("trip-2", "conn-3", other)

	registry.Broadcast("trip-1", "payload")

	if got := first.received(); len(got) != 1 || got[0] != "payload" {
		t.Errorf("first subscriber: expected one payload, got %v", got)
	}
	if got := second.received(); len(got) != 1 {
		t.Errorf("second subscriber: expected one payload, got %v", got)
	}
	if got := other.received(); len(got) != 0 {
		t.Errorf("subscriber in another room received %v", got)
	}
}

func TestRoomRegistry_DisconnectSweepsAllRooms(t *testing.T) {
	t.Parallel()

	registry := NewRoomRegistry()
	sub := &recordingSubscriber{}
	peer := &recordingSubscriber{}

	registry.Join("trip-1", "conn-1", sub)
	registry.Join("trip-2", "conn-1", sub)
	registry.Join("trip-1", "conn-2", peer)

	registry.Disconnect("conn-1")

	if size := registry.RoomSize("trip-1"); size != 1 {
		t.Errorf("expected conn-2 still joined to trip-1, got size %d", size)
	}
	if size := registry.RoomSize("trip-2"); size != 0 {
		t.Errorf("expected trip-2 emptied, got size %d", size)
	}

	registry.Broadcast("trip-1", "payload")
	if got := sub.received(); len(got) != 0 {
		t.Errorf("disconnected subscriber received %v", got)
	}
}

func TestRoomRegistry_LeaveThenDisconnect(t *testing.T) {
	t.Parallel()

	registry := NewRoomRegistry()
	registry.Join("trip-1", "conn-1", &recordingSubscriber{})
	registry.Leave("trip-1", "conn-1")
	// Disconnect after an explicit leave must not panic.
	registry.Disconnect("conn-1")

	if size := registry.RoomSize("trip-1"); size != 0 {
		t.Errorf("expected empty room, got size %d", size)
	}
}

func TestRoomRegistry_ConcurrentJoinLeave(t *testing.T) {
	t.Parallel()

	registry := NewRoomRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sub := &recordingSubscriber{}
			registry.Join("trip-1", string(rune('a'+n)), sub)
			registry.Broadcast("trip-1", n)
			registry.Leave("trip-1", string(rune('a'+n)))
		}(i)
	}
	wg.Wait()

	if size := registry.RoomSize("trip-1"); size != 0 {
		t.Errorf("expected empty room after all leaves, got size %d", size)
	}
}
