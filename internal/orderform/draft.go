package orderform

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"dairyDispatch/internal/api"
	"dairyDispatch/internal/geo"
	"dairyDispatch/models"
)

// Mode selects how the order's client is identified.
type Mode int

const (
	ExistingClient Mode = iota
	NewClient
)

func (m Mode) String() string {
	if m == NewClient {
		return "new"
	}
	return "existing"
}

var (
	ErrNoClient       = errors.New("select a client")
	ErrNewClientName  = errors.New("new client name is required")
	ErrNewClientPhone = errors.New("new client phone is required")
	ErrNoLines        = errors.New("add at least one product")
	ErrNoLocation     = errors.New("pick a delivery location")
	ErrBadQuantity    = errors.New("quantity must be positive")
	ErrBadLocation    = errors.New("location is out of range")
)

// Line is a product in the cart, priced when it was added.
type Line struct {
	Product  models.Product
	Quantity int
}

// Subtotal is quantity times the product price.
func (l Line) Subtotal() float64 { return float64(l.Quantity) * l.Product.Price.Float64() }

// Draft is an order being composed by a dispatcher.
type Draft struct {
	mode           Mode
	clientID       int64
	newClientName  string
	newClientPhone string
	lines          []Line
	location       *models.Point
	address        string
}

func (d *Draft) Mode() Mode { return d.mode }

// SetMode switches client mode. Switching clears the client choice and the
// new-client fields so no stale value leaks into the other mode.
func (d *Draft) SetMode(m Mode) {
	if m == d.mode {
		return
	}
	d.mode = m
	d.clientID = 0
	d.newClientName = ""
	d.newClientPhone = ""
}

// ToggleMode flips between existing and new client.
func (d *Draft) ToggleMode() Mode {
	if d.mode == ExistingClient {
		d.SetMode(NewClient)
	} else {
		d.SetMode(ExistingClient)
	}
	return d.mode
}

// SelectClient picks an existing client and switches to that mode.
func (d *Draft) SelectClient(id int64) {
	d.SetMode(ExistingClient)
	d.clientID = id
}

// SetNewClient fills the new-client fields and switches to that mode.
func (d *Draft) SetNewClient(name, phone string) {
	d.SetMode(NewClient)
	d.newClientName = strings.TrimSpace(name)
	d.newClientPhone = strings.TrimSpace(phone)
}

// AddLine appends a product line at the product's current price.
func (d *Draft) AddLine(p models.Product, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: %d", ErrBadQuantity, qty)
	}
	d.lines = append(d.lines, Line{Product: p, Quantity: qty})
	return nil
}

// RemoveLine drops the line at index i.
func (d *Draft) RemoveLine(i int) {
	if i < 0 || i >= len(d.lines) {
		return
	}
	d.lines = append(d.lines[:i], d.lines[i+1:]...)
}

func (d *Draft) Lines() []Line {
	out := make([]Line, len(d.lines))
	copy(out, d.lines)
	return out
}

// Total is the sum of line subtotals.
func (d *Draft) Total() float64 {
	var t float64
	for _, l := range d.lines {
		t += l.Subtotal()
	}
	return t
}

// SetLocation stores the delivery point rounded to 6 decimals.
func (d *Draft) SetLocation(lat, lng float64) error {
	p := models.Point{Lat: round6(lat), Lng: round6(lng)}
	if !geo.Valid(p) {
		return fmt.Errorf("%w: %s", ErrBadLocation, p)
	}
	d.location = &p
	return nil
}

func (d *Draft) Location() (models.Point, bool) {
	if d.location == nil {
		return models.Point{}, false
	}
	return *d.location, true
}

// SetAddress sets the optional free-text address.
func (d *Draft) SetAddress(s string) { d.address = strings.TrimSpace(s) }

// Reset empties the draft after a successful save.
func (d *Draft) Reset() { *d = Draft{} }

// Validate reports the first missing piece, in form order.
func (d *Draft) Validate() error {
	if d.location == nil {
		return ErrNoLocation
	}
	switch d.mode {
	case ExistingClient:
		if d.clientID == 0 {
			return ErrNoClient
		}
	case NewClient:
		if d.newClientName == "" {
			return ErrNewClientName
		}
		if d.newClientPhone == "" {
			return ErrNewClientPhone
		}
	}
	if len(d.lines) == 0 {
		return ErrNoLines
	}
	return nil
}

// Request builds the creation payload. New orders are always pending.
func (d *Draft) Request() (api.CreateOrderRequest, error) {
	if err := d.Validate(); err != nil {
		return api.CreateOrderRequest{}, err
	}
	req := api.CreateOrderRequest{
		Status:    models.OrderStatusPending,
		Latitude:  models.DecimalPtr(d.location.Lat),
		Longitude: models.DecimalPtr(d.location.Lng),
		Address:   d.address,
	}
	if d.mode == ExistingClient {
		id := d.clientID
		req.ClientID = &id
	} else {
		req.NewClientName = d.newClientName
		req.NewClientPhone = d.newClientPhone
	}
	for _, l := range d.lines {
		req.Lines = append(req.Lines, api.LineRequest{
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
			UnitPrice: l.Product.Price,
		})
	}
	return req, nil
}

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
