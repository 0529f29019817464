package testutil

import (
	"fmt"

	"github.com/jaswdr/faker"

	"dairyDispatch/models"
)

// Fixtures generates realistic backend records around the Cochabamba depot.
type Fixtures struct {
	fake   faker.Faker
	nextID int64
}

// NewFixtures returns a generator whose ids start at first.
func NewFixtures(first int64) *Fixtures {
	return &Fixtures{fake: faker.New(), nextID: first}
}

func (f *Fixtures) id() int64 {
	id := f.nextID
	f.nextID++
	return id
}

// Order builds an order with the given status, located unless located is false.
func (f *Fixtures) Order(status models.OrderStatus, located bool) models.Order {
	clientID := int64(f.fake.IntBetween(1, 500))
	o := models.Order{
		ID:          f.id(),
		ClientID:    &clientID,
		ClientName:  f.fake.Company().Name(),
		ClientPhone: f.fake.Phone().Number(),
		Status:      status,
		Lines: []models.OrderLine{{
			ProductID:   int64(f.fake.IntBetween(1, 20)),
			ProductName: fmt.Sprintf("Leche %s", f.fake.Lorem().Word()),
			Quantity:    f.fake.IntBetween(1, 12),
			UnitPrice:   models.Decimal(f.fake.Float64(2, 3, 20)),
		}},
	}
	if located {
		o.Latitude = models.DecimalPtr(f.fake.Float64(6, -18, -17))
		o.Longitude = models.DecimalPtr(f.fake.Float64(6, -67, -66))
	}
	return o
}

// Orders builds n located orders with the given status.
func (f *Fixtures) Orders(n int, status models.OrderStatus) []models.Order {
	out := make([]models.Order, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.Order(status, true))
	}
	return out
}

// Driver builds a driver with the given availability.
func (f *Fixtures) Driver(status models.DriverStatus) models.Driver {
	return models.Driver{
		ID:           f.id(),
		Name:         f.fake.Person().Name(),
		License:      f.fake.Numerify("LIC-######"),
		Phone:        f.fake.Phone().Number(),
		VehiclePlate: f.fake.Bothify("####-???"),
		Status:       status,
	}
}
