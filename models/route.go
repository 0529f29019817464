package models

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Route is a driver's batch of assigned orders for one delivery run.
// Orders are kept in the order the backend returned them; that order is the
// stop sequence.
type Route struct {
	ID         int64   `json:"ruta_id"`
	DriverName string  `json:"conductor"`
	Origin     *Point  `json:"origen,omitempty"`
	Orders     []Order `json:"pedidos"`
}

// OriginOr returns the route origin, or def when the backend sent none.
func (r Route) OriginOr(def Point) Point {
	if r.Origin == nil {
		return def
	}
	return *r.Origin
}

// Stops returns the delivery points of orders that have coordinates, in route order.
func (r Route) Stops() []Point {
	out := make([]Point, 0, len(r.Orders))
	for _, o := range r.Orders {
		if p, ok := o.Location(); ok {
			out = append(out, p)
		}
	}
	return out
}

// Unlocated returns the ids of orders that cannot be drawn on the map.
func (r Route) Unlocated() []int64 {
	var ids []int64
	for _, o := range r.Orders {
		if !o.HasLocation() {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// Find returns the order with the given id.
func (r Route) Find(id int64) (Order, bool) {
	for _, o := range r.Orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

// RouteKind tags the two shapes of the "my route" response.
type RouteKind int

const (
	NoRoute RouteKind = iota
	HasRoute
)

func (k RouteKind) String() string {
	if k == HasRoute {
		return "has_route"
	}
	return "no_route"
}

// MyRoute is the driver's active route lookup result: either a route or a
// message saying nothing is assigned. NoRoute is a success, not an error.
type MyRoute struct {
	Kind    RouteKind
	Route   *Route
	Message string
}

// ErrUnrecognizedRoute is returned when a payload is neither shape.
var ErrUnrecognizedRoute = errors.New("unrecognized route payload")

// Active returns the route when Kind is HasRoute.
func (m MyRoute) Active() (*Route, bool) {
	if m.Kind != HasRoute || m.Route == nil {
		return nil, false
	}
	return m.Route, true
}

func (m *MyRoute) UnmarshalJSON(b []byte) error {
	var probe struct {
		Message *string         `json:"mensaje"`
		RouteID *int64          `json:"ruta_id"`
		Orders  json.RawMessage `json:"pedidos"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	// A message with no orders ("pedidos" absent, null or []) means nothing
	// is left to deliver.
	if probe.Message != nil && noOrders(probe.Orders) {
		*m = MyRoute{Kind: NoRoute, Message: *probe.Message}
		return nil
	}
	if probe.RouteID == nil && probe.Orders == nil {
		return ErrUnrecognizedRoute
	}
	var r Route
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	*m = MyRoute{Kind: HasRoute, Route: &r}
	return nil
}

func noOrders(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return true
	}
	var orders []json.RawMessage
	return json.Unmarshal(raw, &orders) == nil && len(orders) == 0
}

func (m MyRoute) MarshalJSON() ([]byte, error) {
	if r, ok := m.Active(); ok {
		return json.Marshal(r)
	}
	return json.Marshal(map[string]string{"mensaje": m.Message})
}
