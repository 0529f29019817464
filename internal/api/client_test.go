package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dairyDispatch/internal/auth"
	"dairyDispatch/internal/metrics"
	tu "dairyDispatch/internal/testutil"
	"dairyDispatch/models"
)

type staticCreds struct {
	token string
	err   error
}

func (s staticCreds) Credential() (string, error) { return s.token, s.err }

func TestClient_AttachesCredentialAndRequestID(t *testing.T) {
	b := tu.NewBackend(t)
	b.JSON(http.MethodGet, "/conductores/", http.StatusOK, []map[string]any{
		{"id": 7, "nombre": "Luis", "licencia": "L-7", "estado": "disponible"},
	})
	c := New(b.URL(), staticCreds{token: "abc"})

	drivers, err := c.ListDrivers(context.Background())
	require.NoError(t, err)
	require.Len(t, drivers, 1)
	assert.True(t, drivers[0].Status.Available())

	req, ok := b.Last(http.MethodGet, "/conductores/")
	require.True(t, ok)
	assert.Equal(t, "Token abc", req.Auth)
	assert.NotEmpty(t, req.RequestID)
}

func TestClient_NoCredentialLetsBackendReject(t *testing.T) {
	b := tu.NewBackend(t)
	b.JSON(http.MethodGet, "/pedidos/", http.StatusUnauthorized, map[string]string{
		"detail": "Las credenciales de autenticación no se proveyeron.",
	})
	c := New(b.URL(), staticCreds{err: errors.New("no active session")})

	_, err := c.ListOrders(context.Background(), OrderFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Las credenciales de autenticación no se proveyeron.", apiErr.Message())

	req, _ := b.Last(http.MethodGet, "/pedidos/")
	assert.Empty(t, req.Auth)
}

func TestClient_ExpiredCredentialFailsLocally(t *testing.T) {
	b := tu.NewBackend(t)
	c := New(b.URL(), staticCreds{err: auth.ErrTokenExpired})

	_, err := c.ListDrivers(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
	assert.Empty(t, b.Requests())
}

func TestClient_LoginSendsNoCredential(t *testing.T) {
	b := tu.NewBackend(t)
	b.JSON(http.MethodPost, "/login/", http.StatusOK, map[string]string{"token": "t0k", "rol": "conductor"})
	c := New(b.URL(), staticCreds{token: "stale"})

	sess, err := c.Login(context.Background(), "luis", "secret")
	require.NoError(t, err)
	assert.Equal(t, "t0k", sess.Token)
	assert.Equal(t, models.RoleDriver, sess.Role)
	assert.Equal(t, "luis", sess.Username)

	req, _ := b.Last(http.MethodPost, "/login/")
	assert.Empty(t, req.Auth)
	var body LoginRequest
	req.Decode(t, &body)
	assert.Equal(t, LoginRequest{Username: "luis", Password: "secret"}, body)
}

func TestClient_AssignRouteBodyAndMessage(t *testing.T) {
	b := tu.NewBackend(t)
	b.JSON(http.MethodPost, "/logistica/asignar-ruta/", http.StatusCreated, map[string]string{"mensaje": "Ruta creada"})
	c := New(b.URL(), staticCreds{token: "abc"})

	msg, err := c.AssignRoute(context.Background(), AssignRouteRequest{DriverID: 7, OrderIDs: []int64{12, 15}})
	require.NoError(t, err)
	assert.Equal(t, "Ruta creada", msg)

	req, _ := b.Last(http.MethodPost, "/logistica/asignar-ruta/")
	var body map[string]any
	req.Decode(t, &body)
	assert.Equal(t, float64(7), body["conductor_id"])
	assert.Equal(t, []any{float64(12), float64(15)}, body["pedido_ids"])
}

func TestClient_BackendErrorBodyKeptVerbatim(t *testing.T) {
	b := tu.NewBackend(t)
	b.JSON(http.MethodPost, "/logistica/asignar-ruta/", http.StatusNotFound, map[string]string{"error": "Conductor no encontrado."})
	c := New(b.URL(), staticCreds{token: "abc"})

	_, err := c.AssignRoute(context.Background(), AssignRouteRequest{DriverID: 99, OrderIDs: []int64{1}})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.JSONEq(t, `{"error":"Conductor no encontrado."}`, string(apiErr.Body))
	assert.Equal(t, "Conductor no encontrado.", apiErr.Message())
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestClient_UpdateOrderStatusIsPartial(t *testing.T) {
	b := tu.NewBackend(t)
	b.JSON(http.MethodPatch, "/pedidos/12/", http.StatusOK, map[string]any{"id": 12, "estado": "entregado"})
	c := New(b.URL(), staticCreds{token: "abc"})

	o, err := c.UpdateOrderStatus(context.Background(), 12, models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, o.Status)

	req, _ := b.Last(http.MethodPatch, "/pedidos/12/")
	assert.JSONEq(t, `{"estado":"entregado"}`, string(req.Body))
}

func TestClient_MyRouteBothShapes(t *testing.T) {
	b := tu.NewBackend(t)
	c := New(b.URL(), staticCreds{token: "abc"})

	b.JSON(http.MethodGet, "/mi-ruta/", http.StatusOK, map[string]string{"mensaje": "No tienes rutas asignadas."})
	r, err := c.MyRoute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.NoRoute, r.Kind)
	assert.Equal(t, "No tienes rutas asignadas.", r.Message)

	b.JSON(http.MethodGet, "/mi-ruta/", http.StatusOK, map[string]any{
		"ruta_id":   3,
		"conductor": "Luis",
		"origen":    map[string]float64{"lat": -17.393879, "lng": -66.156944},
		"pedidos": []map[string]any{
			{"id": 12, "estado": "en_camino", "latitud": "-17.390000", "longitud": "-66.150000"},
		},
	})
	r, err = c.MyRoute(context.Background())
	require.NoError(t, err)
	route, ok := r.Active()
	require.True(t, ok)
	assert.Equal(t, int64(3), route.ID)
	require.Len(t, route.Stops(), 1)
	assert.InDelta(t, -17.39, route.Stops()[0].Lat, 1e-9)
}

func TestClient_ListOrdersFiltersByStatus(t *testing.T) {
	b := tu.NewBackend(t)
	b.JSON(http.MethodGet, "/pedidos/", http.StatusOK, []map[string]any{
		{"id": 1, "estado": "pendiente"},
		{"id": 2, "estado": "en_camino"},
		{"id": 3, "estado": "pendiente"},
	})
	c := New(b.URL(), staticCreds{token: "abc"})

	got, err := c.ListOrders(context.Background(), OrderFilter{Status: models.OrderStatusPending})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
}

func TestClient_TransportErrorAndMetrics(t *testing.T) {
	m := metrics.New()
	c := New("http://127.0.0.1:1/core/api", staticCreds{token: "abc"},
		WithMetrics(m), WithHTTPClient(&http.Client{Timeout: time.Second}))

	_, err := c.ListProducts(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/productos/", "0")))
}

func TestEndpointLabel(t *testing.T) {
	assert.Equal(t, "/pedidos/:id/", endpointLabel("/pedidos/12/"))
	assert.Equal(t, "/mi-ruta/", endpointLabel("/mi-ruta/"))
}

func TestError_FieldValidationMessage(t *testing.T) {
	e := &Error{StatusCode: 400, Body: []byte(`{"licencia":["ya existe"],"nombre":["requerido"]}`)}
	assert.Equal(t, "licencia: ya existe; nombre: requerido", e.Message())
	e = &Error{StatusCode: 502, Body: []byte(`<html>bad gateway</html>`)}
	assert.Equal(t, "<html>bad gateway</html>", e.Message())
}
