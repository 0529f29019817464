package api

import (
	"context"
	"fmt"
	"net/http"

	"dairyDispatch/models"
)

// LoginRequest is the credential exchange payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges username/password for a session. It sends no credential.
func (c *Client) Login(ctx context.Context, username, password string) (models.Session, error) {
	var out models.Session
	err := c.do(ctx, http.MethodPost, "/login/", LoginRequest{Username: username, Password: password}, &out, false)
	if err != nil {
		return models.Session{}, err
	}
	out.Role = models.ParseRole(string(out.Role))
	out.Username = username
	return out, nil
}

// OrderFilter narrows ListOrders. Zero value lists everything.
type OrderFilter struct {
	Status models.OrderStatus
}

// ListOrders returns every order. A status filter is applied locally
// because the backend ignores query parameters on this endpoint.
func (c *Client) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	var out []models.Order
	if err := c.do(ctx, http.MethodGet, "/pedidos/", nil, &out, true); err != nil {
		return nil, err
	}
	if f.Status == "" {
		return out, nil
	}
	filtered := out[:0]
	for _, o := range out {
		if o.Status == f.Status {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

func (c *Client) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	var out []models.Driver
	if err := c.do(ctx, http.MethodGet, "/conductores/", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	var out []models.Vehicle
	if err := c.do(ctx, http.MethodGet, "/vehiculos/", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := c.do(ctx, http.MethodGet, "/productos/", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListClients(ctx context.Context) ([]models.Client, error) {
	var out []models.Client
	if err := c.do(ctx, http.MethodGet, "/clientes/", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// LineRequest is one product line of a new order.
type LineRequest struct {
	ProductID int64          `json:"producto"`
	Quantity  int            `json:"cantidad"`
	UnitPrice models.Decimal `json:"precio_unitario"`
}

// CreateOrderRequest creates an order for an existing client (ClientID) or
// registers a new one on the fly (NewClientName/NewClientPhone).
type CreateOrderRequest struct {
	ClientID       *int64             `json:"cliente,omitempty"`
	NewClientName  string             `json:"nombre_nuevo_cliente,omitempty"`
	NewClientPhone string             `json:"telefono_nuevo_cliente,omitempty"`
	Status         models.OrderStatus `json:"estado"`
	Lines          []LineRequest      `json:"detalles"`
	Latitude       *models.Decimal    `json:"latitud"`
	Longitude      *models.Decimal    `json:"longitud"`
	Address        string             `json:"direccion_texto,omitempty"`
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (models.Order, error) {
	var out models.Order
	if err := c.do(ctx, http.MethodPost, "/pedidos/", req, &out, true); err != nil {
		return models.Order{}, err
	}
	return out, nil
}

// UpdateOrderStatus sends a partial update of the order's status only.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) (models.Order, error) {
	var out models.Order
	body := map[string]models.OrderStatus{"estado": status}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/pedidos/%d/", orderID), body, &out, true); err != nil {
		return models.Order{}, err
	}
	return out, nil
}

// AssignRouteRequest batches orders onto one driver.
type AssignRouteRequest struct {
	DriverID int64   `json:"conductor_id"`
	OrderIDs []int64 `json:"pedido_ids"`
}

// AssignRoute persists an assignment and returns the backend's confirmation.
func (c *Client) AssignRoute(ctx context.Context, req AssignRouteRequest) (string, error) {
	var out struct {
		Message string `json:"mensaje"`
	}
	if err := c.do(ctx, http.MethodPost, "/logistica/asignar-ruta/", req, &out, true); err != nil {
		return "", err
	}
	return out.Message, nil
}

// MyRoute fetches the calling driver's active route.
func (c *Client) MyRoute(ctx context.Context) (models.MyRoute, error) {
	var out models.MyRoute
	if err := c.do(ctx, http.MethodGet, "/mi-ruta/", nil, &out, true); err != nil {
		return models.MyRoute{}, err
	}
	return out, nil
}

// IncidentRequest reports an obstacle on the current route.
type IncidentRequest struct {
	Category    models.IncidentCategory `json:"tipo"`
	Description string                  `json:"descripcion"`
}

func (c *Client) ReportIncident(ctx context.Context, req IncidentRequest) (string, error) {
	var out struct {
		Message string `json:"mensaje"`
	}
	if err := c.do(ctx, http.MethodPost, "/conductor/incidencia/", req, &out, true); err != nil {
		return "", err
	}
	return out.Message, nil
}

// DriverHistory lists the calling driver's delivered orders, newest first.
func (c *Client) DriverHistory(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if err := c.do(ctx, http.MethodGet, "/conductor/historial/", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Reports(ctx context.Context) (models.Report, error) {
	var out models.Report
	if err := c.do(ctx, http.MethodGet, "/reportes/", nil, &out, true); err != nil {
		return models.Report{}, err
	}
	return out, nil
}
