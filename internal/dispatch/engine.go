package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dairyDispatch/internal/api"
	"dairyDispatch/internal/logger"
	"dairyDispatch/internal/metrics"
	"dairyDispatch/models"
)

var (
	// ErrValidation is matched by every local precondition failure.
	ErrValidation         = errors.New("invalid assignment")
	ErrEmptySelection     = fmt.Errorf("%w: no orders selected", ErrValidation)
	ErrNoDriver           = fmt.Errorf("%w: no driver selected", ErrValidation)
	ErrMissingCoordinates = fmt.Errorf("%w: orders without coordinates", ErrValidation)
	ErrNotPending         = fmt.Errorf("%w: orders not pending", ErrValidation)
	ErrUnknownOrder       = fmt.Errorf("%w: orders not in the current lists", ErrValidation)
)

// Assigner persists a route assignment.
type Assigner interface {
	AssignRoute(ctx context.Context, req api.AssignRouteRequest) (string, error)
}

// Refresher re-fetches orders and drivers after a successful assignment.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// OrderLookup resolves selected ids against the latest known orders.
type OrderLookup interface {
	Order(id int64) (models.Order, bool)
}

// Config toggles local checks.
type Config struct {
	// RequireCoordinates rejects orders that cannot be placed on a map.
	RequireCoordinates bool
}

// Engine groups the selection and a driver into one route.
type Engine struct {
	sel     *Selection
	assign  Assigner
	refresh Refresher
	orders  OrderLookup
	cfg     Config
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewEngine builds an Engine over sel. orders may be nil, in which case only
// the selection and driver are checked locally. Otherwise every selected id
// must be known to orders.
func NewEngine(sel *Selection, a Assigner, r Refresher, orders OrderLookup, cfg Config, l *slog.Logger, m *metrics.Metrics) *Engine {
	return &Engine{sel: sel, assign: a, refresh: r, orders: orders, cfg: cfg, log: logger.OrDiscard(l), metrics: m}
}

// Selection returns the engine's selection state.
func (e *Engine) Selection() *Selection { return e.sel }

// Result is a successful assignment.
type Result struct {
	Message  string  `json:"mensaje"`
	DriverID int64   `json:"conductor_id"`
	OrderIDs []int64 `json:"pedido_ids"`
	// RefreshErr is set when the follow-up refresh failed; the assignment itself stood.
	RefreshErr error `json:"-"`
}

// Validate checks the local preconditions without touching the network.
func (e *Engine) Validate() error {
	ids := e.sel.IDs()
	if len(ids) == 0 {
		return ErrEmptySelection
	}
	if e.sel.Driver() == 0 {
		return ErrNoDriver
	}
	if e.orders == nil {
		return nil
	}
	var unknown, missing, notPending []int64
	for _, id := range ids {
		o, ok := e.orders.Order(id)
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		if !o.Status.CanTransitionTo(models.OrderStatusEnRoute) {
			notPending = append(notPending, id)
		}
		if e.cfg.RequireCoordinates && !o.HasLocation() {
			missing = append(missing, id)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %v", ErrUnknownOrder, unknown)
	}
	if len(notPending) > 0 {
		return fmt.Errorf("%w: %v", ErrNotPending, notPending)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingCoordinates, missing)
	}
	return nil
}

// Submit sends the selection as one assignment. On success the selection is
// cleared and a single refresh follows. On failure the selection is kept and
// backend rejections come back as *api.Error with the body untouched.
func (e *Engine) Submit(ctx context.Context) (Result, error) {
	if err := e.Validate(); err != nil {
		e.metrics.ObserveAssignment("invalid")
		return Result{}, err
	}
	req := api.AssignRouteRequest{DriverID: e.sel.Driver(), OrderIDs: e.sel.IDs()}

	msg, err := e.assign.AssignRoute(ctx, req)
	if err != nil {
		var apiErr *api.Error
		result := "failed"
		if errors.As(err, &apiErr) {
			result = "rejected"
		}
		e.metrics.ObserveAssignment(result)
		e.log.Warn("route assignment failed", logger.Action("assign_route"),
			slog.Int64("driver_id", req.DriverID), slog.Any("order_ids", req.OrderIDs), logger.Err(err))
		return Result{}, err
	}

	e.sel.Clear()
	e.metrics.ObserveAssignment("ok")
	e.log.Info("route assigned", logger.Action("assign_route"),
		slog.Int64("driver_id", req.DriverID), slog.Any("order_ids", req.OrderIDs), slog.String("message", msg))

	res := Result{Message: msg, DriverID: req.DriverID, OrderIDs: req.OrderIDs}
	if e.refresh != nil {
		if err := e.refresh.Refresh(ctx); err != nil {
			res.RefreshErr = err
			e.log.Warn("refresh after assignment failed", logger.Action("assign_route"), logger.Err(err))
		}
	}
	return res, nil
}
