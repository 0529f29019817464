package models

// Product is a catalog item that can be added to an order.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"nombre"`
	Description string  `json:"descripcion,omitempty"`
	Price       Decimal `json:"precio"`
	CategoryID  *int64  `json:"categoria,omitempty"`
}

// Client is a customer that receives deliveries.
type Client struct {
	ID        int64    `json:"id"`
	Name      string   `json:"nombre_cliente"`
	Phone     string   `json:"telefono,omitempty"`
	Email     string   `json:"email,omitempty"`
	Address   string   `json:"direccion,omitempty"`
	Latitude  *Decimal `json:"latitud"`
	Longitude *Decimal `json:"longitud"`
}
