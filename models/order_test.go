package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_ForwardOnly(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderStatusPending, OrderStatusEnRoute, true},
		{OrderStatusEnRoute, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusEnRoute, OrderStatusPending, false},
		{OrderStatusDelivered, OrderStatusDelivered, false},
		{OrderStatus("cancelado"), OrderStatusDelivered, false},
	}
	for _, c := range cases {
		err := ValidateTransition(c.from, c.to)
		if c.ok {
			assert.NoError(t, err, "%s -> %s", c.from, c.to)
		} else {
			assert.True(t, errors.Is(err, ErrInvalidTransition), "%s -> %s", c.from, c.to)
		}
	}
}

func TestOrder_DecodesBackendPayload(t *testing.T) {
	raw := `{"id":12,"cliente":3,"nombre_cliente":"Tienda Sur","estado":"pendiente",
		"detalles":[{"id":1,"producto":4,"nombre_producto":"Leche 1L","cantidad":3,"precio_unitario":"6.50"}],
		"latitud":"-17.393879","longitud":"-66.156944","conductor_asignado":null}`
	var o Order
	require.NoError(t, json.Unmarshal([]byte(raw), &o))
	assert.Equal(t, int64(12), o.ID)
	assert.Equal(t, OrderStatusPending, o.Status)
	p, ok := o.Location()
	require.True(t, ok)
	assert.InDelta(t, -17.393879, p.Lat, 1e-9)
	assert.InDelta(t, -66.156944, p.Lng, 1e-9)
	assert.InDelta(t, 19.5, o.Total(), 1e-9)
	assert.Equal(t, "Tienda Sur", o.ClientLabel())
}

func TestOrder_NullCoordinatesMeanNoLocation(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"estado":"pendiente","latitud":null,"longitud":null}`), &o))
	assert.False(t, o.HasLocation())

	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"estado":"pendiente","latitud":-17.4}`), &o))
	assert.False(t, o.HasLocation(), "one coordinate is not a location")
}

func TestMyRoute_TaggedUnion(t *testing.T) {
	var none MyRoute
	require.NoError(t, json.Unmarshal([]byte(`{"mensaje":"Has completado tu ruta."}`), &none))
	assert.Equal(t, NoRoute, none.Kind)
	assert.Equal(t, "Has completado tu ruta.", none.Message)
	_, ok := none.Active()
	assert.False(t, ok)

	var some MyRoute
	raw := `{"ruta_id":9,"conductor":"Ana","origen":{"lat":-17.39,"lng":-66.15},
		"pedidos":[{"id":12,"estado":"en_camino","latitud":"-17.40","longitud":"-66.16","detalles":[]},
		{"id":15,"estado":"en_camino","latitud":null,"longitud":null,"detalles":[]}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &some))
	r, ok := some.Active()
	require.True(t, ok)
	assert.Equal(t, int64(9), r.ID)
	assert.Equal(t, "Ana", r.DriverName)
	assert.Len(t, r.Stops(), 1)
	assert.Equal(t, []int64{15}, r.Unlocated())

	for _, raw := range []string{
		`{"mensaje":"Has completado tu ruta.","pedidos":null}`,
		`{"mensaje":"Has completado tu ruta.","pedidos":[]}`,
	} {
		var done MyRoute
		require.NoError(t, json.Unmarshal([]byte(raw), &done), raw)
		assert.Equal(t, NoRoute, done.Kind, raw)
		assert.Equal(t, "Has completado tu ruta.", done.Message, raw)
	}

	var bad MyRoute
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"detail":"x"}`), &bad), ErrUnrecognizedRoute)
}

func TestParseIncidentCategory(t *testing.T) {
	c, ok := ParseIncidentCategory("customer-absent")
	require.True(t, ok)
	assert.Equal(t, IncidentCustomerAbsent, c)

	c, ok = ParseIncidentCategory(" MECANICO ")
	require.True(t, ok)
	assert.Equal(t, IncidentMechanical, c)

	_, ok = ParseIncidentCategory("weather")
	assert.False(t, ok)
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("Admin"))
	assert.Equal(t, RoleDriver, ParseRole("conductor"))
	assert.Equal(t, Role(""), ParseRole("root"))
}
