package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dairyDispatch/internal/api"
	"dairyDispatch/internal/testutil"
	"dairyDispatch/models"
)

type fakeSource struct {
	orders    []models.Order
	drivers   []models.Driver
	vehicles  []models.Vehicle
	driverErr error

	inFlight, peak int32
	gate           chan struct{}
}

func (f *fakeSource) enter() {
	n := atomic.AddInt32(&f.inFlight, 1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if n <= p || atomic.CompareAndSwapInt32(&f.peak, p, n) {
			break
		}
	}
	if f.gate != nil {
		<-f.gate
	}
	atomic.AddInt32(&f.inFlight, -1)
}

func (f *fakeSource) ListOrders(context.Context, api.OrderFilter) ([]models.Order, error) {
	f.enter()
	return f.orders, nil
}

func (f *fakeSource) ListDrivers(context.Context) ([]models.Driver, error) {
	f.enter()
	return f.drivers, f.driverErr
}

func (f *fakeSource) ListVehicles(context.Context) ([]models.Vehicle, error) {
	f.enter()
	return f.vehicles, nil
}

func TestRefresh_FetchesConcurrentlyAndDerivesViews(t *testing.T) {
	fx := testutil.NewFixtures(1)
	pending := fx.Orders(2, models.OrderStatusPending)
	moving := fx.Order(models.OrderStatusEnRoute, true)
	movingNoGeo := fx.Order(models.OrderStatusEnRoute, false)
	done := fx.Order(models.OrderStatusDelivered, true)

	src := &fakeSource{
		orders:   append(append([]models.Order{}, pending...), moving, movingNoGeo, done),
		drivers:  []models.Driver{fx.Driver(models.DriverStatusAvailable), fx.Driver(models.DriverStatusOnRoute)},
		vehicles: []models.Vehicle{{Plate: "1234-ABC"}},
		gate:     make(chan struct{}),
	}
	// Release all three fetches together once they are all in flight.
	go func() {
		for atomic.LoadInt32(&src.inFlight) < 3 {
		}
		close(src.gate)
	}()

	c := New(src, nil)
	require.NoError(t, c.Refresh(context.Background()))
	assert.EqualValues(t, 3, atomic.LoadInt32(&src.peak))

	assert.Len(t, c.PendingOrders(), 2)
	require.Len(t, c.InTransitOrders(), 1)
	assert.Equal(t, moving.ID, c.InTransitOrders()[0].ID)
	require.Len(t, c.AvailableDrivers(), 1)
	assert.Equal(t, models.DriverStatusAvailable, c.AvailableDrivers()[0].Status)
	assert.Len(t, c.Snapshot().Vehicles, 1)
	assert.EqualValues(t, 1, c.Snapshot().Generation)

	o, ok := c.Order(done.ID)
	require.True(t, ok)
	assert.Equal(t, models.OrderStatusDelivered, o.Status)
}

func TestRefresh_FailureKeepsPreviousSnapshot(t *testing.T) {
	fx := testutil.NewFixtures(1)
	src := &fakeSource{
		orders:  fx.Orders(3, models.OrderStatusPending),
		drivers: []models.Driver{fx.Driver(models.DriverStatusAvailable)},
	}
	c := New(src, nil)
	require.NoError(t, c.Refresh(context.Background()))

	src.orders = nil
	src.driverErr = errors.New("boom")
	err := c.Refresh(context.Background())
	assert.EqualError(t, err, "boom")
	assert.Len(t, c.PendingOrders(), 3)
	assert.Len(t, c.AvailableDrivers(), 1)
}

func TestRefresh_ReplacesWholesale(t *testing.T) {
	fx := testutil.NewFixtures(1)
	src := &fakeSource{orders: fx.Orders(3, models.OrderStatusPending)}
	c := New(src, nil)
	require.NoError(t, c.Refresh(context.Background()))

	src.orders = fx.Orders(1, models.OrderStatusPending)
	require.NoError(t, c.Refresh(context.Background()))
	require.Len(t, c.PendingOrders(), 1)
	assert.Equal(t, src.orders[0].ID, c.PendingOrders()[0].ID)
}

// blockingSource lets the test finish an older refresh after a newer one.
type blockingSource struct {
	mu    sync.Mutex
	calls int
	first chan struct{}
}

func (b *blockingSource) ListOrders(context.Context, api.OrderFilter) ([]models.Order, error) {
	b.mu.Lock()
	b.calls++
	n := b.calls
	b.mu.Unlock()
	if n == 1 {
		<-b.first
		return []models.Order{{ID: 1, Status: models.OrderStatusPending}}, nil
	}
	return []models.Order{{ID: 2, Status: models.OrderStatusPending}}, nil
}

func (b *blockingSource) ListDrivers(context.Context) ([]models.Driver, error)   { return nil, nil }
func (b *blockingSource) ListVehicles(context.Context) ([]models.Vehicle, error) { return nil, nil }

func TestRefresh_StaleResultIsDropped(t *testing.T) {
	src := &blockingSource{first: make(chan struct{})}
	c := New(src, nil)

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	for {
		src.mu.Lock()
		started := src.calls
		src.mu.Unlock()
		if started == 1 {
			break
		}
	}
	require.NoError(t, c.Refresh(context.Background()))
	close(src.first)
	require.NoError(t, <-done)

	got := c.PendingOrders()
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
	assert.EqualValues(t, 2, c.Snapshot().Generation)
}
