package source

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/couchcryptid/powder-radar-service/internal/domain"
)

// BreakerSource decorates a remote source with a circuit breaker so a dead
// upstream is skipped immediately during failover instead of costing its
// full timeout on every tile of every animation frame.
type BreakerSource struct {
	inner Source
	cb    *gobreaker.CircuitBreaker
}

// WithBreaker wraps a source in a circuit breaker: trips after five
// consecutive failures, probes again after 30 seconds.
func WithBreaker(inner Source, logger *slog.Logger) *BreakerSource {
	name := inner.Descriptor().Name
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			logger.Warn("radar source circuit state changed",
				"source", name, "from", from.String(), "to", to.String())
		},
	})
	return &BreakerSource{inner: inner, cb: cb}
}

func (b *BreakerSource) Descriptor() Descriptor {
	return b.inner.Descriptor()
}

func (b *BreakerSource) DiscoverFrames(ctx context.Context) ([]domain.RadarFrame, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.DiscoverFrames(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.RadarFrame), nil
}

func (b *BreakerSource) FetchTile(ctx context.Context, frame domain.RadarFrame, z, x, y int) ([]byte, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		data, err := b.inner.FetchTile(ctx, frame, z, x, y)
		return data, err
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return result.([]byte), nil
}
