// Package collector owns fetch, retry, cache and normalization for one
// configured location. It polls five bureau endpoints sequentially per update
// cycle, falls back to the last known good payload per endpoint when retries
// are exhausted, and enriches raw payloads with derived meteorological values.
package collector

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ozsensors/bom-bridge/internal/bom"
	"github.com/ozsensors/bom-bridge/internal/degraded"
	"github.com/ozsensors/bom-bridge/internal/geohash"
	"github.com/ozsensors/bom-bridge/internal/models"
	"github.com/ozsensors/bom-bridge/internal/observability"
)

const (
	maxRetries     = 3
	retryDelayBase = 2 // wait = base^attempt seconds; no sleep after the final attempt
)

// cacheEntry is the last known good payload for one endpoint. The payload is
// only overwritten on a verified 200 response with a successful decode.
type cacheEntry struct {
	payload   models.Payload
	fetchedAt time.Time
}

// Collector fetches and normalizes bureau data for a single point. Snapshot
// fields are refreshed in place on every Update cycle and survive failed
// cycles untouched. A cycle mutex guarantees at most one Update runs at a
// time; a separate read-write lock keeps snapshot reads consistent for
// concurrent readers.
type Collector struct {
	latitude  float64
	longitude float64
	geohash   string

	client bom.Getter
	logger *zap.Logger

	// sleep is the backoff hook between retry attempts. Tests replace it to
	// record requested waits without sleeping.
	sleep func(ctx context.Context, d time.Duration)

	cycleMu sync.Mutex

	mu        sync.RWMutex
	snapshots [bom.NumEndpoints]models.Payload
	cache     [bom.NumEndpoints]cacheEntry
}

// New creates a Collector for the given coordinates, deriving the 6-character
// geohash the bureau endpoints require.
func New(client bom.Getter, logger *zap.Logger, latitude, longitude float64) *Collector {
	return newCollector(client, logger, latitude, longitude, geohash.Encode(latitude, longitude, 6))
}

// NewWithGeohash creates a Collector using a bureau-provided geohash, for
// example from the location search. Search results carry 7 characters but the
// observations and hourly endpoints require exactly 6, so longer values are
// truncated.
func NewWithGeohash(client bom.Getter, logger *zap.Logger, latitude, longitude float64, gh string) *Collector {
	if len(gh) > 6 {
		gh = gh[:6]
	}
	if gh == "" {
		gh = geohash.Encode(latitude, longitude, 6)
	}
	return newCollector(client, logger, latitude, longitude, gh)
}

func newCollector(client bom.Getter, logger *zap.Logger, latitude, longitude float64, gh string) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		latitude:  latitude,
		longitude: longitude,
		geohash:   gh,
		client:    client,
		logger:    logger.With(zap.String("geohash", gh)),
		sleep:     sleepContext,
	}
}

// Geohash returns the 6-character location key used for all endpoint URLs.
func (c *Collector) Geohash() string { return c.geohash }

// Latitude returns the configured latitude.
func (c *Collector) Latitude() float64 { return c.latitude }

// Longitude returns the configured longitude.
func (c *Collector) Longitude() float64 { return c.longitude }

// LocationsData returns the latest locations payload, or nil if never fetched.
func (c *Collector) LocationsData() models.Payload { return c.snapshot(bom.Locations) }

// ObservationsData returns the latest normalized observations payload.
func (c *Collector) ObservationsData() models.Payload { return c.snapshot(bom.Observations) }

// DailyForecastsData returns the latest formatted daily forecast payload.
func (c *Collector) DailyForecastsData() models.Payload { return c.snapshot(bom.DailyForecasts) }

// HourlyForecastsData returns the latest formatted hourly forecast payload.
func (c *Collector) HourlyForecastsData() models.Payload { return c.snapshot(bom.HourlyForecasts) }

// WarningsData returns the latest warnings payload, stored verbatim.
func (c *Collector) WarningsData() models.Payload { return c.snapshot(bom.Warnings) }

// LastFetched reports when the endpoint last returned a verified payload.
// ok is false when the endpoint has never succeeded.
func (c *Collector) LastFetched(endpoint bom.Endpoint) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry := c.cache[endpoint]
	return entry.fetchedAt, entry.payload != nil
}

func (c *Collector) snapshot(endpoint bom.Endpoint) models.Payload {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshots[endpoint]
}

func (c *Collector) setSnapshot(endpoint bom.Endpoint, payload models.Payload) {
	c.mu.Lock()
	c.snapshots[endpoint] = payload
	c.mu.Unlock()
}

// GetLocationsData fetches the locations endpoint alone and assigns the
// snapshot on success. Used at startup to resolve location metadata (name,
// timezone) before the first full cycle.
func (c *Collector) GetLocationsData(ctx context.Context) models.Payload {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()
	data := c.fetchWithRetry(ctx, bom.Locations)
	if data != nil {
		c.setSnapshot(bom.Locations, data)
	}
	return data
}

// Update runs one full refresh cycle: locations (first time only),
// observations, daily forecasts, hourly forecasts, warnings, strictly in that
// order. Each step is independent; a failed endpoint leaves its prior
// snapshot in place and the cycle continues. Unexpected panics anywhere in
// the cycle are logged and swallowed so a bad payload never takes down the
// poller.
func (c *Collector) Update(ctx context.Context) {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	start := time.Now()
	complete := true
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("unexpected error during update cycle", zap.Any("panic", r))
			observability.CollectorCyclesTotal.WithLabelValues("error").Inc()
			return
		}
		result := "ok"
		if !complete {
			result = "partial"
		}
		observability.CollectorCyclesTotal.WithLabelValues(result).Inc()
		observability.CollectorCycleDuration.Observe(time.Since(start).Seconds())
	}()

	if c.LocationsData() == nil {
		if data := c.fetchWithRetry(ctx, bom.Locations); data != nil {
			c.setSnapshot(bom.Locations, data)
		} else {
			complete = false
		}
	}

	if data := c.fetchWithRetry(ctx, bom.Observations); data != nil {
		formatObservations(data)
		c.setSnapshot(bom.Observations, data)
	} else {
		complete = false
	}

	if data := c.fetchWithRetry(ctx, bom.DailyForecasts); data != nil {
		mergeTodayTemps(c.DailyForecastsData(), data)
		formatDailyForecasts(data)
		c.setSnapshot(bom.DailyForecasts, data)
	} else {
		complete = false
	}

	if data := c.fetchWithRetry(ctx, bom.HourlyForecasts); data != nil {
		formatHourlyForecasts(data)
		c.setSnapshot(bom.HourlyForecasts, data)
	} else {
		complete = false
	}

	if data := c.fetchWithRetry(ctx, bom.Warnings); data != nil {
		c.setSnapshot(bom.Warnings, data)
	} else {
		complete = false
	}
}

// fetchWithRetry attempts the endpoint up to maxRetries times. Error-status
// responses fall through to the next attempt immediately; transport errors
// back off exponentially (1s, 2s), with no sleep after the final attempt.
// When all attempts fail, the last known good payload is returned if one
// exists; otherwise nil, which callers treat as "no update this cycle".
func (c *Collector) fetchWithRetry(ctx context.Context, endpoint bom.Endpoint) models.Payload {
	name := endpoint.String()

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			observability.BureauAPIRetriesTotal.WithLabelValues(name).Inc()
		}

		payload, err := c.client.Get(ctx, endpoint, c.geohash)
		if err == nil {
			// The cache keeps its own copy: callers normalize the returned
			// payload in place, and the last known good payload must stay raw.
			c.mu.Lock()
			c.cache[endpoint] = cacheEntry{payload: payload.Clone(), fetchedAt: time.Now()}
			c.mu.Unlock()
			degraded.RecordSuccess()
			return payload
		}

		observability.BureauAPIErrorsTotal.WithLabelValues(name, string(bom.CategorizeError(err))).Inc()

		if bom.IsStatusError(err) {
			// Clear API errors fail fast: no backoff, straight to the next attempt.
			c.logger.Warn("bureau API returned error status",
				zap.String("endpoint", name),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			continue
		}

		wait := time.Duration(math.Pow(retryDelayBase, float64(attempt))) * time.Second
		c.logger.Warn("bureau API request failed",
			zap.String("endpoint", name),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_in", wait),
			zap.Error(err))
		if attempt < maxRetries-1 {
			c.sleep(ctx, wait)
		}
	}

	degraded.RecordError()

	c.mu.RLock()
	entry := c.cache[endpoint]
	c.mu.RUnlock()
	if entry.payload != nil {
		age := time.Since(entry.fetchedAt)
		c.logger.Info("serving cached payload after retry exhaustion",
			zap.String("endpoint", name),
			zap.Int("age_minutes", int(age.Minutes())))
		observability.StaleCacheServesTotal.WithLabelValues(name).Inc()
		observability.StaleCacheAgeSeconds.Observe(age.Seconds())
		return entry.payload.Clone()
	}

	c.logger.Error("no cached payload available", zap.String("endpoint", name))
	return nil
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
