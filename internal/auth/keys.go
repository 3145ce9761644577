package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// KeyCache fetches and caches the provider's public signing keys, keyed by
// key id. Entries expire after a TTL and the cache is bounded by an LRU, so
// a rotating key set cannot grow it without limit. Concurrent lookups that
// miss share a single upstream fetch.
type KeyCache struct {
	jwksURL string
	ttl     time.Duration
	client  *http.Client

	keys  *lru.Cache[string, cachedKey]
	fetch singleflight.Group
}

type cachedKey struct {
	key       *rsa.PublicKey
	fetchedAt time.Time
}

// NewKeyCache creates a key cache over the given JWKS endpoint. Size bounds
// the number of cached keys; fetchTimeout bounds each upstream call.
func NewKeyCache(jwksURL string, size int, ttl, fetchTimeout time.Duration) (*KeyCache, error) {
	if size <= 0 {
		size = 64
	}
	keys, err := lru.New[string, cachedKey](size)
	if err != nil {
		return nil, err
	}
	return &KeyCache{
		jwksURL: jwksURL,
		ttl:     ttl,
		client:  &http.Client{Timeout: fetchTimeout},
		keys:    keys,
	}, nil
}

// Key returns the public key for the given key id, fetching the key set on
// a miss or expired entry. A fetch already in flight is shared rather than
// duplicated.
func (c *KeyCache) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if entry, ok := c.keys.Get(kid); ok && time.Since(entry.fetchedAt) < c.ttl {
		return entry.key, nil
	}

	fetched, err, _ := c.fetch.Do("jwks", func() (any, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		// A stale key beats no key while the provider is unreachable.
		if entry, ok := c.keys.Get(kid); ok {
			return entry.key, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrKeyFetch, err)
	}

	// Resolve against the fetched set itself: with a small cache the key
	// may already have been evicted again by the repopulation.
	if key, ok := fetched.(map[string]*rsa.PublicKey)[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKey, kid)
}

// jwksResponse is the RFC 7517 key set document.
type jwksResponse struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// refresh fetches the full key set, repopulates the cache, and returns the
// fetched keys.
func (c *KeyCache) refresh(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch key set: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("key set endpoint returned status %d", resp.StatusCode)
	}

	var doc jwksResponse
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode key set: %w", err)
	}

	now := time.Now()
	fetched := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || (k.Use != "" && k.Use != "sig") || k.Kid == "" {
			continue
		}
		pub, err := k.publicKey()
		if err != nil {
			continue
		}
		fetched[k.Kid] = pub
		c.keys.Add(k.Kid, cachedKey{key: pub, fetchedAt: now})
	}
	return fetched, nil
}

// publicKey decodes the modulus and exponent into an RSA public key.
func (k jwk) publicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e == 0 {
		return nil, fmt.Errorf("zero exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}
