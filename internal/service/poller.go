package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Poller drives the refresh cadence for a registry. One initial refresh on
// start, then one per interval until the context is cancelled.
type Poller struct {
	registry *Registry
	interval time.Duration
	logger   *zap.Logger
}

// NewPoller creates a poller for the registry at the given interval.
func NewPoller(registry *Registry, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{registry: registry, interval: interval, logger: logger}
}

// Run blocks until ctx is done. Call from a goroutine in main.
func (p *Poller) Run(ctx context.Context) {
	p.refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopping")
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

func (p *Poller) refresh(ctx context.Context) {
	start := time.Now()
	p.registry.RefreshAll(ctx)
	p.logger.Info("refresh complete",
		zap.Int("locations", len(p.registry.order)),
		zap.Duration("duration", time.Since(start)))
}
