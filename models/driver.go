package models

// DriverStatus represents a driver's availability as reported by the backend.
type DriverStatus string

const (
	DriverStatusAvailable DriverStatus = "disponible"
	DriverStatusOnRoute   DriverStatus = "en_ruta"
)

// Available reports whether a route may be assigned to the driver.
// Anything other than "disponible" counts as busy.
func (s DriverStatus) Available() bool { return s == DriverStatusAvailable }

// Driver represents a delivery driver.
// Availability flips to busy when a route is assigned and back when it is
// fully delivered; the backend owns that transition.
type Driver struct {
	ID           int64        `json:"id"`
	Name         string       `json:"nombre"`
	License      string       `json:"licencia"`
	Phone        string       `json:"telefono,omitempty"`
	VehiclePlate string       `json:"placa_vehiculo,omitempty"`
	Status       DriverStatus `json:"estado"`
}

// Vehicle is a fleet vehicle.
type Vehicle struct {
	Plate         string `json:"placa"`
	Type          string `json:"tipo"`
	Capacity      int    `json:"capacidad"`
	AssignedRoute *int64 `json:"ruta_asignada"`
}
