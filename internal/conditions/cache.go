package conditions

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/powder-radar-service/internal/domain"
)

// CachedProvider wraps a Provider with a single-slot TTL cache. Observation
// points change on the order of hours, so every tile of a frame can share
// one fetch.
//
// On refresh failure the last good point set is served stale rather than
// failing the render; only a cold cache propagates the error.
type CachedProvider struct {
	inner Provider
	ttl   time.Duration

	mu        sync.Mutex
	points    []domain.ObservationPoint
	fetchedAt time.Time
	warm      bool
}

// NewCachedProvider creates a TTL cache decorator around a provider.
func NewCachedProvider(inner Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		ttl:   ttl,
	}
}

func (c *CachedProvider) Current(ctx context.Context) ([]domain.ObservationPoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := domain.Clock().Now()
	if c.warm && now.Sub(c.fetchedAt) < c.ttl {
		return c.snapshot(), nil
	}

	points, err := c.inner.Current(ctx)
	if err != nil {
		if c.warm {
			return c.snapshot(), nil
		}
		return nil, err
	}

	c.points = points
	c.fetchedAt = now
	c.warm = true
	return c.snapshot(), nil
}

// snapshot copies the cached slice so callers cannot mutate shared state.
func (c *CachedProvider) snapshot() []domain.ObservationPoint {
	out := make([]domain.ObservationPoint, len(c.points))
	copy(out, c.points)
	return out
}
