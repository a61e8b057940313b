// Package service owns the set of monitored locations. It builds one
// collector per configured site, answers geohash lookups for the read
// surface, and refreshes every collector on a fixed cadence.
package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ozsensors/bom-bridge/internal/bom"
	"github.com/ozsensors/bom-bridge/internal/collector"
	"github.com/ozsensors/bom-bridge/internal/config"
	"github.com/ozsensors/bom-bridge/internal/models"
)

// Entry is one monitored location and its collector.
type Entry struct {
	Name      string
	Collector *collector.Collector
}

// Registry maps geohashes to collectors. Built once at startup; lookups are
// read-only afterwards, so no locking is needed.
type Registry struct {
	logger    *zap.Logger
	byGeohash map[string]*Entry
	order     []string
}

// NewRegistry builds a collector per configured location. Locations without
// a configured geohash get one derived from their coordinates.
func NewRegistry(client bom.Getter, logger *zap.Logger, locations []config.LocationConfig) *Registry {
	r := &Registry{
		logger:    logger,
		byGeohash: make(map[string]*Entry, len(locations)),
	}
	for _, loc := range locations {
		c := collector.NewWithGeohash(client, logger, loc.Latitude, loc.Longitude, loc.Geohash)
		gh := c.Geohash()
		if _, exists := r.byGeohash[gh]; exists {
			logger.Warn("duplicate geohash in configuration, keeping first",
				zap.String("name", loc.Name),
				zap.String("geohash", gh))
			continue
		}
		r.byGeohash[gh] = &Entry{Name: loc.Name, Collector: c}
		r.order = append(r.order, gh)
	}
	sort.Strings(r.order)
	return r
}

// Lookup resolves a request geohash to its entry. Hashes longer than six
// characters identify the same cell as their six-character prefix, so the
// extra precision is dropped before the map lookup.
func (r *Registry) Lookup(geohash string) (*Entry, bool) {
	gh := strings.ToLower(strings.TrimSpace(geohash))
	if len(gh) > 6 {
		gh = gh[:6]
	}
	e, ok := r.byGeohash[gh]
	return e, ok
}

// Entries returns all entries in stable geohash order.
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, 0, len(r.order))
	for _, gh := range r.order {
		out = append(out, r.byGeohash[gh])
	}
	return out
}

// Locations returns the monitored locations for the listing endpoint.
func (r *Registry) Locations() []models.Location {
	out := make([]models.Location, 0, len(r.order))
	for _, gh := range r.order {
		e := r.byGeohash[gh]
		out = append(out, models.Location{
			Name:      e.Name,
			Latitude:  e.Collector.Latitude(),
			Longitude: e.Collector.Longitude(),
			Geohash:   gh,
		})
	}
	return out
}

// RefreshAll runs one update cycle for every collector concurrently. Each
// collector serializes its own cycles, so overlapping calls are safe.
func (r *Registry) RefreshAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, gh := range r.order {
		e := r.byGeohash[gh]
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Collector.Update(ctx)
		}()
	}
	wg.Wait()
}
