package monitor

import (
	"context"
	"log/slog"
	"time"

	"dairyDispatch/internal/cache"
	"dairyDispatch/internal/delivery"
	"dairyDispatch/internal/logger"
	"dairyDispatch/models"
)

// CacheSource is the dispatcher-side data feeding the map.
type CacheSource interface {
	Refresh(ctx context.Context) error
	Snapshot() cache.Snapshot
}

// RouteSource is the driver-side data feeding the map.
type RouteSource interface {
	Load(ctx context.Context) (delivery.View, error)
}

// Poller refreshes its sources on an interval and broadcasts a snapshot.
// Either source may be nil.
type Poller struct {
	Cache    CacheSource
	Route    RouteSource
	Hub      *Hub
	Depot    models.Point
	Interval time.Duration
	Log      *slog.Logger
}

// Tick runs one refresh-and-broadcast cycle. A failed refresh still
// broadcasts the last good data.
func (p *Poller) Tick(ctx context.Context) MapSnapshot {
	log := logger.OrDiscard(p.Log)
	snap := MapSnapshot{Depot: p.Depot, UpdatedAt: time.Now()}
	if p.Cache != nil {
		if err := p.Cache.Refresh(ctx); err != nil {
			log.Warn("map refresh failed", logger.Action("map_poll"), logger.Err(err))
		}
		snap = FromCache(p.Cache.Snapshot(), p.Depot)
	}
	if p.Route != nil {
		v, err := p.Route.Load(ctx)
		if err != nil {
			log.Warn("route refresh failed", logger.Action("map_poll"), logger.Err(err))
		}
		snap.Route = RouteFromView(v)
	}
	if err := p.Hub.Broadcast(snap); err != nil {
		log.Error("broadcast failed", logger.Action("map_poll"), logger.Err(err))
	}
	return snap
}

// Run ticks immediately and then every Interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	p.Tick(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.Tick(ctx)
		}
	}
}
