package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// countingJWKSServer serves a key set and counts upstream fetches.
func countingJWKSServer(t *testing.T, keys map[string]*rsa.PrivateKey, delay time.Duration) (*httptest.Server, *int32) {
	t.Helper()
	var fetches int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
		if delay > 0 {
			time.Sleep(delay)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(jwksDocument(keys))
	}))
	t.Cleanup(server.Close)
	return server, &fetches
}

func TestKeyCache_MissTriggersFetch(t *testing.T) {
	t.Parallel()

	key := newSigningKey(t)
	server, fetches := countingJWKSServer(t, map[string]*rsa.PrivateKey{"kid-1": key}, 0)

	cache, err := NewKeyCache(server.URL, 16, time.Hour, 2*time.Second)
	if err != nil {
		t.Fatalf("new key cache: %v", err)
	}

	got, err := cache.Key(context.Background(), "kid-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.N.Cmp(key.N) != 0 {
		t.Error("returned key does not match published key")
	}
	if n := atomic.LoadInt32(fetches); n != 1 {
		t.Errorf("expected 1 fetch, got %d", n)
	}

	// Cached now; no second fetch.
	if _, err := cache.Key(context.Background(), "kid-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := atomic.LoadInt32(fetches); n != 1 {
		t.Errorf("expected 1 fetch after cache hit, got %d", n)
	}
}

func TestKeyCache_ConcurrentMissesShareOneFetch(t *testing.T) {
	t.Parallel()

	key := newSigningKey(t)
	server, fetches := countingJWKSServer(t, map[string]*rsa.PrivateKey{"kid-1": key}, 100*time.Millisecond)

	cache, err := NewKeyCache(server.URL, 16, time.Hour, 2*time.Second)
	if err != nil {
		t.Fatalf("new key cache: %v", err)
	}

	const callers = 10
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = cache.Key(context.Background(), "kid-1")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: unexpected error: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(fetches); n != 1 {
		t.Errorf("expected concurrent misses to share 1 fetch, got %d", n)
	}
}

func TestKeyCache_TTLExpiryRefetches(t *testing.T) {
	t.Parallel()

	key := newSigningKey(t)
	server, fetches := countingJWKSServer(t, map[string]*rsa.PrivateKey{"kid-1": key}, 0)

	cache, err := NewKeyCache(server.URL, 16, 20*time.Millisecond, 2*time.Second)
	if err != nil {
		t.Fatalf("new key cache: %v", err)
	}

	if _, err := cache.Key(context.Background(), "kid-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if _, err := cache.Key(context.Background(), "kid-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := atomic.LoadInt32(fetches); n != 2 {
		t.Errorf("expected expired entry to refetch, got %d fetches", n)
	}
}

func TestKeyCache_UnknownKidAfterFreshFetch(t *testing.T) {
	t.Parallel()

	key := newSigningKey(t)
	server, _ := countingJWKSServer(t, map[string]*rsa.PrivateKey{"kid-1": key}, 0)

	cache, err := NewKeyCache(server.URL, 16, time.Hour, 2*time.Second)
	if err != nil {
		t.Fatalf("new key cache: %v", err)
	}

	if _, err := cache.Key(context.Background(), "kid-rotated-away"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("expected ErrUnknownKey, got %v", err)
	}
}

func TestKeyCache_BoundedCapacityEvictsOldest(t *testing.T) {
	t.Parallel()

	keyA := newSigningKey(t)
	keyB := newSigningKey(t)
	server, fetches := countingJWKSServer(t, map[string]*rsa.PrivateKey{
		"kid-a": keyA,
		"kid-b": keyB,
	}, 0)

	cache, err := NewKeyCache(server.URL, 1, time.Hour, 2*time.Second)
	if err != nil {
		t.Fatalf("new key cache: %v", err)
	}

	// Both keys cannot fit in a single slot, so alternating lookups must
	// refetch at least once; every lookup still resolves its key.
	if _, err := cache.Key(context.Background(), "kid-a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cache.Key(context.Background(), "kid-b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cache.Key(context.Background(), "kid-a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := atomic.LoadInt32(fetches); n < 2 {
		t.Errorf("expected eviction to force a refetch, got %d fetches", n)
	}
}

func TestKeyCache_StaleKeyServedWhenFetchFails(t *testing.T) {
	t.Parallel()

	key := newSigningKey(t)
	var failing atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(jwksDocument(map[string]*rsa.PrivateKey{"kid-1": key}))
	}))
	t.Cleanup(server.Close)

	cache, err := NewKeyCache(server.URL, 16, 10*time.Millisecond, 2*time.Second)
	if err != nil {
		t.Fatalf("new key cache: %v", err)
	}

	if _, err := cache.Key(context.Background(), "kid-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Entry expires; the provider goes down; the stale key still serves.
	failing.Store(true)
	time.Sleep(20 * time.Millisecond)

	got, err := cache.Key(context.Background(), "kid-1")
	if err != nil {
		t.Fatalf("expected stale key fallback, got error: %v", err)
	}
	if got.N.Cmp(key.N) != 0 {
		t.Error("stale fallback returned wrong key")
	}

	// A kid never cached fails with ErrKeyFetch while the provider is down.
	if _, err := cache.Key(context.Background(), "kid-2"); !errors.Is(err, ErrKeyFetch) {
		t.Errorf("expected ErrKeyFetch, got %v", err)
	}
}
