package models

import (
	"errors"
	"fmt"
)

// OrderStatus represents the current progress of an order.
// Values are the backend's wire strings.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pendiente"
	OrderStatusEnRoute   OrderStatus = "en_camino"
	OrderStatusDelivered OrderStatus = "entregado"
)

// ErrInvalidTransition is returned when a status change is not a single forward step.
var ErrInvalidTransition = errors.New("invalid order status transition")

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusEnRoute, OrderStatusDelivered:
		return true
	default:
		return false
	}
}

// Next returns the status that follows s, if any.
func (s OrderStatus) Next() (OrderStatus, bool) {
	switch s {
	case OrderStatusPending:
		return OrderStatusEnRoute, true
	case OrderStatusEnRoute:
		return OrderStatusDelivered, true
	default:
		return "", false
	}
}

// CanTransitionTo reports whether next is exactly one forward step from s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	n, ok := s.Next()
	return ok && n == next
}

// ValidateTransition returns ErrInvalidTransition unless from -> to is allowed.
func ValidateTransition(from, to OrderStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, from, to)
	}
	return nil
}

// Label is a human readable status name.
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPending:
		return "pending"
	case OrderStatusEnRoute:
		return "en route"
	case OrderStatusDelivered:
		return "delivered"
	default:
		return "unknown(" + string(s) + ")"
	}
}

// OrderLine is one product entry of an order, priced at order time.
type OrderLine struct {
	ID          int64   `json:"id,omitempty"`
	ProductID   int64   `json:"producto"`
	ProductName string  `json:"nombre_producto,omitempty"`
	Quantity    int     `json:"cantidad"`
	UnitPrice   Decimal `json:"precio_unitario"`
}

// Subtotal is quantity times unit price.
func (l OrderLine) Subtotal() float64 {
	return float64(l.Quantity) * l.UnitPrice.Float64()
}

// Order represents a customer order as returned by the backend.
// Latitude/Longitude are nullable; nil means the order has no geo-location yet.
type Order struct {
	ID             int64       `json:"id"`
	ClientID       *int64      `json:"cliente,omitempty"`
	ClientName     string      `json:"nombre_cliente,omitempty"`
	ClientPhone    string      `json:"telefono_cliente,omitempty"`
	Address        string      `json:"direccion_texto,omitempty"`
	Status         OrderStatus `json:"estado"`
	Lines          []OrderLine `json:"detalles"`
	Latitude       *Decimal    `json:"latitud"`
	Longitude      *Decimal    `json:"longitud"`
	AssignedDriver string      `json:"conductor_asignado,omitempty"`
}

// Location returns the delivery point when both coordinates are present.
func (o Order) Location() (Point, bool) {
	if o.Latitude == nil || o.Longitude == nil {
		return Point{}, false
	}
	return Point{Lat: o.Latitude.Float64(), Lng: o.Longitude.Float64()}, true
}

// HasLocation reports whether the order can be placed on a map.
func (o Order) HasLocation() bool {
	_, ok := o.Location()
	return ok
}

// Total is the sum of all line subtotals.
func (o Order) Total() float64 {
	var t float64
	for _, l := range o.Lines {
		t += l.Subtotal()
	}
	return t
}

// ClientLabel returns the best available description of the order's client.
func (o Order) ClientLabel() string {
	if o.ClientName != "" {
		return o.ClientName
	}
	if o.ClientID != nil {
		return fmt.Sprintf("client #%d", *o.ClientID)
	}
	return "-"
}
