package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"dairyDispatch/internal/api"
	"dairyDispatch/internal/logger"
	"dairyDispatch/internal/metrics"
	"dairyDispatch/internal/routing"
	"dairyDispatch/models"
)

var (
	ErrNotConfirmed     = errors.New("delivery not confirmed")
	ErrEmptyDescription = errors.New("incident description is required")
	ErrUnknownCategory  = errors.New("unknown incident category")
	ErrNotInRoute       = errors.New("order is not part of the active route")
	ErrNoActiveRoute    = errors.New("no active route")
	// ErrClosed is returned once the consumer of the controller is gone.
	ErrClosed = errors.New("delivery controller closed")
)

// Gateway is the part of the backend API the controller needs.
type Gateway interface {
	MyRoute(ctx context.Context) (models.MyRoute, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) (models.Order, error)
	ReportIncident(ctx context.Context, req api.IncidentRequest) (string, error)
	DriverHistory(ctx context.Context) ([]models.Order, error)
}

// PathResolver produces route geometry. It must not fail.
type PathResolver interface {
	Resolve(ctx context.Context, origin models.Point, stops []models.Point) routing.Path
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Navigator is told when a flow is finished and the user should leave it.
type Navigator interface {
	Done()
}

// ViewKind is the state of the driver's route screen.
type ViewKind int

const (
	ViewRoute ViewKind = iota + 1
	ViewCompleted
	ViewError
)

func (k ViewKind) String() string {
	switch k {
	case ViewRoute:
		return "route"
	case ViewCompleted:
		return "completed"
	case ViewError:
		return "error"
	default:
		return "loading"
	}
}

// View is what the route screen renders.
type View struct {
	Kind      ViewKind      `json:"kind"`
	Route     *models.Route `json:"route,omitempty"`
	Path      routing.Path  `json:"path"`
	Unlocated []int64       `json:"unlocated,omitempty"`
	Message   string        `json:"message,omitempty"`
	Err       error         `json:"-"`
	// Stale is set when a delivery went through but the reload after it
	// failed. ReloadErr holds that failure.
	Stale     bool  `json:"stale,omitempty"`
	ReloadErr error `json:"-"`
}

// Controller drives the driver-side lifecycle of the active route.
type Controller struct {
	gw       Gateway
	resolver PathResolver
	depot    models.Point
	confirm  Confirmer
	nav      Navigator
	log      *slog.Logger
	metrics  *metrics.Metrics

	mu     sync.Mutex
	closed bool
	view   View
}

// Options wires optional collaborators. A nil Confirmer declines every prompt.
type Options struct {
	Confirmer Confirmer
	Navigator Navigator
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

func NewController(gw Gateway, resolver PathResolver, depot models.Point, opts Options) *Controller {
	return &Controller{
		gw:       gw,
		resolver: resolver,
		depot:    depot,
		confirm:  opts.Confirmer,
		nav:      opts.Navigator,
		log:      logger.OrDiscard(opts.Logger),
		metrics:  opts.Metrics,
	}
}

// Close marks the consumer gone. Results arriving later are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// View returns the last loaded view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// apply stores v unless the controller was closed meanwhile.
func (c *Controller) apply(v View) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.view = v
	return nil
}

// Load fetches the active route. "No route" is a completed view, not an
// error. A fetch failure yields an error view and the error.
func (c *Controller) Load(ctx context.Context) (View, error) {
	if c.isClosed() {
		return View{}, ErrClosed
	}
	v, err := c.fetch(ctx)
	if aerr := c.apply(v); aerr != nil {
		return View{}, aerr
	}
	if err != nil {
		c.log.Warn("load route failed", logger.Action("load_route"), logger.Err(err))
		return v, err
	}
	return v, nil
}

// fetch builds the view for the current backend state without storing it.
func (c *Controller) fetch(ctx context.Context) (View, error) {
	mr, err := c.gw.MyRoute(ctx)
	if err != nil {
		return View{Kind: ViewError, Message: userMessage("could not load your route", err), Err: err}, err
	}
	route, ok := mr.Active()
	if !ok {
		return View{Kind: ViewCompleted, Message: mr.Message}, nil
	}
	origin := route.OriginOr(c.depot)
	return View{
		Kind:      ViewRoute,
		Route:     route,
		Path:      c.resolver.Resolve(ctx, origin, route.Stops()),
		Unlocated: route.Unlocated(),
	}, nil
}

// MarkDelivered moves one en-route order of the active route to delivered
// after the user confirms, then reloads the route. Nothing is changed
// locally on failure.
//
// A controller that has not loaded yet reads the route first so the order
// can be checked; that read happens before the prompt. The only mutating
// call is the status update after confirmation.
//
// When the update succeeds but the reload fails, the delivery stands: the
// last good view is kept with the order marked delivered, Stale set and
// ReloadErr holding the reload failure. The returned error stays nil.
func (c *Controller) MarkDelivered(ctx context.Context, orderID int64) (View, error) {
	if c.isClosed() {
		return View{}, ErrClosed
	}
	v := c.View()
	if v.Kind == 0 {
		var err error
		if v, err = c.Load(ctx); err != nil {
			return v, err
		}
	}
	if v.Kind != ViewRoute || v.Route == nil {
		return v, ErrNoActiveRoute
	}
	order, ok := v.Route.Find(orderID)
	if !ok {
		return v, fmt.Errorf("%w: #%d", ErrNotInRoute, orderID)
	}
	if err := models.ValidateTransition(order.Status, models.OrderStatusDelivered); err != nil {
		return v, err
	}

	ok, err := c.ask(ctx, fmt.Sprintf("Confirm delivery of order #%d (%s)?", orderID, order.ClientLabel()))
	if err != nil {
		return v, err
	}
	if !ok {
		c.metrics.ObserveDelivery("delivered", "declined")
		return v, ErrNotConfirmed
	}

	if _, err := c.gw.UpdateOrderStatus(ctx, orderID, models.OrderStatusDelivered); err != nil {
		c.metrics.ObserveDelivery("delivered", "failed")
		c.log.Warn("mark delivered failed", logger.Action("mark_delivered"), slog.Int64("order_id", orderID), logger.Err(err))
		return v, err
	}
	c.metrics.ObserveDelivery("delivered", "ok")
	c.log.Info("order delivered", logger.Action("mark_delivered"), slog.Int64("order_id", orderID))

	if c.isClosed() {
		return View{}, ErrClosed
	}
	nv, err := c.fetch(ctx)
	if err != nil {
		c.log.Warn("reload after delivery failed", logger.Action("mark_delivered"), slog.Int64("order_id", orderID), logger.Err(err))
		nv = withDelivered(v, orderID)
		nv.Stale = true
		nv.ReloadErr = err
	}
	if err := c.apply(nv); err != nil {
		return View{}, err
	}
	return nv, nil
}

// withDelivered copies v with orderID set to delivered. The route's order
// slice is copied so views handed out earlier are not changed.
func withDelivered(v View, orderID int64) View {
	r := *v.Route
	r.Orders = append([]models.Order(nil), v.Route.Orders...)
	for i := range r.Orders {
		if r.Orders[i].ID == orderID {
			r.Orders[i].Status = models.OrderStatusDelivered
		}
	}
	v.Route = &r
	return v
}

func (c *Controller) ask(ctx context.Context, prompt string) (bool, error) {
	if c.confirm == nil {
		return false, nil
	}
	return c.confirm.Confirm(ctx, prompt)
}

// ReportIncident records an obstacle on the current route. An empty
// category means traffic. The order state machine is not touched.
func (c *Controller) ReportIncident(ctx context.Context, category, description string) (string, error) {
	if c.isClosed() {
		return "", ErrClosed
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return "", ErrEmptyDescription
	}
	cat := models.IncidentTraffic
	if strings.TrimSpace(category) != "" {
		var ok bool
		if cat, ok = models.ParseIncidentCategory(category); !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownCategory, category)
		}
	}

	msg, err := c.gw.ReportIncident(ctx, api.IncidentRequest{Category: cat, Description: description})
	if err != nil {
		c.metrics.ObserveDelivery("incident", "failed")
		c.log.Warn("report incident failed", logger.Action("report_incident"), logger.Err(err))
		return "", err
	}
	c.metrics.ObserveDelivery("incident", "ok")
	c.log.Info("incident reported", logger.Action("report_incident"), slog.String("category", string(cat)))
	if c.isClosed() {
		return msg, ErrClosed
	}
	if c.nav != nil {
		c.nav.Done()
	}
	return msg, nil
}

// History lists the driver's delivered orders.
func (c *Controller) History(ctx context.Context) ([]models.Order, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	orders, err := c.gw.DriverHistory(ctx)
	if err != nil {
		return nil, err
	}
	if c.isClosed() {
		return nil, ErrClosed
	}
	return orders, nil
}

func userMessage(prefix string, err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if m := apiErr.Message(); m != "" {
			return prefix + ": " + m
		}
	}
	if errors.Is(err, api.ErrUnauthorized) {
		return prefix + ": please log in again"
	}
	return prefix
}
