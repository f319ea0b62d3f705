// Package source holds the radar source adapters: one concrete type per
// upstream provider plus the synthetic generator, all behind one interface
// so the manager can treat them as an ordered list of interchangeable
// tile suppliers.
package source

import (
	"context"
	"sort"

	"github.com/couchcryptid/powder-radar-service/internal/domain"
)

// Descriptor is a source's static capability record, registered once at
// process start.
type Descriptor struct {
	Name            string
	Priority        int // higher wins during tile failover
	Coverage        string
	MaxHistoryHours int
	RequiresAPIKey  bool
	Quality         int // 1–5 annotation carried onto frames; not used in failover
}

// Source is one radar imagery supplier.
//
// DiscoverFrames lists the snapshots the source can currently serve.
// FetchTile returns the PNG for one frame/tile, (nil, nil) when the source
// has nothing for that frame, and an error on upstream failure. Callers
// treat nil and error identically — fall through to the next source.
type Source interface {
	Descriptor() Descriptor
	DiscoverFrames(ctx context.Context) ([]domain.RadarFrame, error)
	FetchTile(ctx context.Context, frame domain.RadarFrame, z, x, y int) ([]byte, error)
}

// Registry holds the registered sources sorted descending by priority.
type Registry struct {
	sources []Source
}

// NewRegistry creates a registry. Order of the arguments does not matter;
// the registry sorts by priority.
func NewRegistry(sources ...Source) *Registry {
	sorted := make([]Source, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Descriptor().Priority > sorted[j].Descriptor().Priority
	})
	return &Registry{sources: sorted}
}

// Sources returns the sources in descending priority order.
func (r *Registry) Sources() []Source {
	return r.sources
}

// Names returns the source names in priority order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.Descriptor().Name
	}
	return names
}
