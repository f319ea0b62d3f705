package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/couchcryptid/powder-radar-service/internal/domain"
	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- stub source for registry and breaker tests ---

type stubSource struct {
	desc      Descriptor
	frames    []domain.RadarFrame
	frameErr  error
	tile      []byte
	tileErr   error
	tileCalls int
}

func (s *stubSource) Descriptor() Descriptor { return s.desc }

func (s *stubSource) DiscoverFrames(_ context.Context) ([]domain.RadarFrame, error) {
	return s.frames, s.frameErr
}

func (s *stubSource) FetchTile(_ context.Context, _ domain.RadarFrame, _, _, _ int) ([]byte, error) {
	s.tileCalls++
	return s.tile, s.tileErr
}

func TestRegistry_SortsByDescendingPriority(t *testing.T) {
	low := &stubSource{desc: Descriptor{Name: "low", Priority: 10}}
	high := &stubSource{desc: Descriptor{Name: "high", Priority: 100}}
	mid := &stubSource{desc: Descriptor{Name: "mid", Priority: 50}}

	reg := NewRegistry(low, high, mid)

	assert.Equal(t, []string{"high", "mid", "low"}, reg.Names())
}

func TestRegistry_StableForEqualPriority(t *testing.T) {
	a := &stubSource{desc: Descriptor{Name: "a", Priority: 50}}
	b := &stubSource{desc: Descriptor{Name: "b", Priority: 50}}

	reg := NewRegistry(a, b)

	assert.Equal(t, []string{"a", "b"}, reg.Names())
}

// --- breaker ---

func TestBreakerSource_PassesThroughSuccess(t *testing.T) {
	inner := &stubSource{
		desc: Descriptor{Name: "stub", Priority: 50},
		tile: []byte("png"),
	}
	b := WithBreaker(inner, discardLogger())

	data, err := b.FetchTile(context.Background(), domain.RadarFrame{}, 1, 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
	assert.Equal(t, b.Descriptor(), inner.Descriptor())
}

func TestBreakerSource_NilTilePassesThrough(t *testing.T) {
	inner := &stubSource{desc: Descriptor{Name: "stub"}}
	b := WithBreaker(inner, discardLogger())

	data, err := b.FetchTile(context.Background(), domain.RadarFrame{}, 1, 0, 0)
	assert.NoError(t, err)
	assert.Nil(t, data)
}

func TestBreakerSource_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &stubSource{
		desc:    Descriptor{Name: "stub"},
		tileErr: errors.New("upstream down"),
	}
	b := WithBreaker(inner, discardLogger())

	for i := 0; i < 5; i++ {
		_, err := b.FetchTile(context.Background(), domain.RadarFrame{}, 1, 0, 0)
		assert.Error(t, err)
	}
	assert.Equal(t, 5, inner.tileCalls)

	// Circuit is open now: the inner source must not be called again.
	_, err := b.FetchTile(context.Background(), domain.RadarFrame{}, 1, 0, 0)
	assert.Error(t, err)
	assert.Equal(t, 5, inner.tileCalls, "open circuit short-circuits the call")
}
