package monitor

import (
	"time"

	"dairyDispatch/internal/cache"
	"dairyDispatch/internal/delivery"
	"dairyDispatch/models"
)

// Marker is one order drawn on the map.
type Marker struct {
	OrderID int64              `json:"order_id"`
	Client  string             `json:"client"`
	Status  models.OrderStatus `json:"status"`
	Lat     float64            `json:"lat"`
	Lng     float64            `json:"lng"`
	Driver  string             `json:"driver,omitempty"`
}

// RouteLayer is the active route polyline and its stops.
type RouteLayer struct {
	RouteID   int64        `json:"route_id"`
	Driver    string       `json:"driver"`
	Source    string       `json:"source"`
	Polyline  [][2]float64 `json:"polyline"`
	Stops     []Marker     `json:"stops"`
	Unlocated []int64      `json:"unlocated,omitempty"`
	// Message is set instead of a polyline when the driver has nothing assigned.
	Message string `json:"message,omitempty"`
}

// MapSnapshot is everything a map client needs to draw one frame.
type MapSnapshot struct {
	Depot     models.Point `json:"depot"`
	Pending   []Marker     `json:"pending"`
	InTransit []Marker     `json:"in_transit"`
	Route     *RouteLayer  `json:"route,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func markers(orders []models.Order) []Marker {
	out := make([]Marker, 0, len(orders))
	for _, o := range orders {
		p, ok := o.Location()
		if !ok {
			continue
		}
		out = append(out, Marker{
			OrderID: o.ID,
			Client:  o.ClientLabel(),
			Status:  o.Status,
			Lat:     p.Lat,
			Lng:     p.Lng,
			Driver:  o.AssignedDriver,
		})
	}
	return out
}

// FromCache fills pending and in-transit markers. Orders without
// coordinates are left off the map.
func FromCache(s cache.Snapshot, depot models.Point) MapSnapshot {
	return MapSnapshot{
		Depot:     depot,
		Pending:   markers(s.PendingOrders()),
		InTransit: markers(s.InTransitOrders()),
		UpdatedAt: s.FetchedAt,
	}
}

// RouteFromView converts a driver route view into a map layer. Views that
// are neither a route nor a completed route yield nil.
func RouteFromView(v delivery.View) *RouteLayer {
	switch v.Kind {
	case delivery.ViewCompleted:
		return &RouteLayer{Message: v.Message}
	case delivery.ViewRoute:
		if v.Route == nil {
			return nil
		}
		return &RouteLayer{
			RouteID:   v.Route.ID,
			Driver:    v.Route.DriverName,
			Source:    string(v.Path.Source),
			Polyline:  v.Path.LatLngs(),
			Stops:     markers(v.Route.Orders),
			Unlocated: v.Unlocated,
		}
	default:
		return nil
	}
}
