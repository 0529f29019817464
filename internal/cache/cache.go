package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"dairyDispatch/internal/api"
	"dairyDispatch/internal/logger"
	"dairyDispatch/models"
)

// Source is the subset of the gateway the cache reads from.
type Source interface {
	ListOrders(ctx context.Context, f api.OrderFilter) ([]models.Order, error)
	ListDrivers(ctx context.Context) ([]models.Driver, error)
	ListVehicles(ctx context.Context) ([]models.Vehicle, error)
}

// Snapshot is one consistent view of the three collections.
type Snapshot struct {
	Orders     []models.Order   `json:"orders"`
	Drivers    []models.Driver  `json:"drivers"`
	Vehicles   []models.Vehicle `json:"vehicles"`
	Generation uint64           `json:"generation"`
	FetchedAt  time.Time        `json:"fetched_at"`
}

// Cache mirrors backend orders, drivers and vehicles. Every refresh replaces
// the collections wholesale; filtered views are derived on each call.
type Cache struct {
	src Source
	log *slog.Logger

	mu      sync.RWMutex
	snap    Snapshot
	started uint64 // generation of the most recently started refresh
}

func New(src Source, l *slog.Logger) *Cache {
	return &Cache{src: src, log: logger.OrDiscard(l)}
}

// Refresh fetches all collections concurrently. The snapshot is replaced
// only if every fetch succeeded and no newer refresh has started since.
// On failure the previous snapshot stays and the first error is returned.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.started++
	gen := c.started
	c.mu.Unlock()

	var (
		wg       sync.WaitGroup
		orders   []models.Order
		drivers  []models.Driver
		vehicles []models.Vehicle
		errs     [3]error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		orders, errs[0] = c.src.ListOrders(ctx, api.OrderFilter{})
	}()
	go func() {
		defer wg.Done()
		drivers, errs[1] = c.src.ListDrivers(ctx)
	}()
	go func() {
		defer wg.Done()
		vehicles, errs[2] = c.src.ListVehicles(ctx)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			c.log.Warn("cache refresh failed", logger.Action("cache_refresh"), slog.Uint64("generation", gen), logger.Err(err))
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.started {
		c.log.Debug("discarding stale refresh", logger.Action("cache_refresh"), slog.Uint64("generation", gen), slog.Uint64("latest", c.started))
		return nil
	}
	c.snap = Snapshot{
		Orders:     orders,
		Drivers:    drivers,
		Vehicles:   vehicles,
		Generation: gen,
		FetchedAt:  time.Now(),
	}
	c.log.Debug("cache refreshed", logger.Action("cache_refresh"), slog.Uint64("generation", gen),
		slog.Int("orders", len(orders)), slog.Int("drivers", len(drivers)), slog.Int("vehicles", len(vehicles)))
	return nil
}

// Snapshot returns the latest applied snapshot.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// PendingOrders are orders waiting for assignment.
func (c *Cache) PendingOrders() []models.Order {
	return c.Snapshot().PendingOrders()
}

// AvailableDrivers are drivers that can take a route.
func (c *Cache) AvailableDrivers() []models.Driver {
	return c.Snapshot().AvailableDrivers()
}

// InTransitOrders are en-route orders that can be placed on a map.
func (c *Cache) InTransitOrders() []models.Order {
	return c.Snapshot().InTransitOrders()
}

// Order looks up an order by id in the latest snapshot.
func (c *Cache) Order(id int64) (models.Order, bool) {
	for _, o := range c.Snapshot().Orders {
		if o.ID == id {
			return o, true
		}
	}
	return models.Order{}, false
}

func (s Snapshot) PendingOrders() []models.Order {
	return filterOrders(s.Orders, func(o models.Order) bool {
		return o.Status == models.OrderStatusPending
	})
}

func (s Snapshot) InTransitOrders() []models.Order {
	return filterOrders(s.Orders, func(o models.Order) bool {
		return o.Status == models.OrderStatusEnRoute && o.HasLocation()
	})
}

func (s Snapshot) AvailableDrivers() []models.Driver {
	var out []models.Driver
	for _, d := range s.Drivers {
		if d.Status.Available() {
			out = append(out, d)
		}
	}
	return out
}

func filterOrders(in []models.Order, keep func(models.Order) bool) []models.Order {
	var out []models.Order
	for _, o := range in {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}
