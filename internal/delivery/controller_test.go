package delivery

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dairyDispatch/internal/api"
	"dairyDispatch/internal/routing"
	tu "dairyDispatch/internal/testutil"
	"dairyDispatch/models"
)

var depot = models.Point{Lat: -17.393879, Lng: -66.156944}

type straightResolver struct{ calls int }

func (s *straightResolver) Resolve(_ context.Context, origin models.Point, stops []models.Point) routing.Path {
	s.calls++
	return routing.Straight(origin, stops)
}

type answer struct {
	yes     bool
	prompts []string
}

func (a *answer) Confirm(_ context.Context, prompt string) (bool, error) {
	a.prompts = append(a.prompts, prompt)
	return a.yes, nil
}

type nav struct{ done int }

func (n *nav) Done() { n.done++ }

func routePayload(orders ...map[string]any) map[string]any {
	return map[string]any{
		"ruta_id":   4,
		"conductor": "Luis",
		"origen":    map[string]float64{"lat": depot.Lat, "lng": depot.Lng},
		"pedidos":   orders,
	}
}

func order(id int64, status string, geo bool) map[string]any {
	o := map[string]any{"id": id, "estado": status, "nombre_cliente": "Tienda"}
	if geo {
		o["latitud"] = "-17.380000"
		o["longitud"] = "-66.150000"
	} else {
		o["latitud"] = nil
		o["longitud"] = nil
	}
	return o
}

func newController(t *testing.T, b *tu.Backend, opts Options) (*Controller, *straightResolver) {
	t.Helper()
	r := &straightResolver{}
	return NewController(api.New(b.URL(), nil), r, depot, opts), r
}

func TestLoad_NoRouteIsCompletedView(t *testing.T) {
	b := tu.NewBackend(t)
	b.JSON(http.MethodGet, "/mi-ruta/", http.StatusOK, map[string]string{"mensaje": "Has completado tu ruta."})
	c, r := newController(t, b, Options{})

	v, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ViewCompleted, v.Kind)
	assert.Equal(t, "Has completado tu ruta.", v.Message)
	assert.Zero(t, r.calls)
}

func TestLoad_RouteResolvesGeometry(t *testing.T) {
	b := tu.NewBackend(t)
	b.JSON(http.MethodGet, "/mi-ruta/", http.StatusOK, routePayload(order(12, "en_camino", true), order(15, "en_camino", false)))
	c, r := newController(t, b, Options{})

	v, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ViewRoute, v.Kind)
	assert.Equal(t, 1, r.calls)
	assert.Equal(t, []models.Point{depot, {Lat: -17.38, Lng: -66.15}}, v.Path.Points)
	assert.Equal(t, []int64{15}, v.Unlocated)
}

func TestLoad_FailureIsErrorView(t *testing.T) {
	b := tu.NewBackend(t)
	b.JSON(http.MethodGet, "/mi-ruta/", http.StatusForbidden, map[string]string{"error": "No eres conductor."})
	c, _ := newController(t, b, Options{})

	v, err := c.Load(context.Background())
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, ViewError, v.Kind)
	assert.Equal(t, "could not load your route: No eres conductor.", v.Message)
}

func TestMarkDelivered_DeclinedMakesNoCall(t *testing.T) {
	b := tu.NewBackend(t)
	b.JSON(http.MethodGet, "/mi-ruta/", http.StatusOK, routePayload(order(12, "en_camino", true)))
	a := &answer{yes: false}
	c, _ := newController(t, b, Options{Confirmer: a})

	_, err := c.MarkDelivered(context.Background(), 12)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Len(t, a.prompts, 1)
	assert.Zero(t, b.Mutations())
	// The first call on an unloaded controller reads the route once.
	assert.Equal(t, 1, b.Count(http.MethodGet, "/mi-ruta/"))

	// Once loaded, a declined delivery touches the network not at all.
	_, err = c.MarkDelivered(context.Background(), 12)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Len(t, b.Requests(), 1)
}

func TestMarkDelivered_ReloadFailureKeepsDelivery(t *testing.T) {
	b := tu.NewBackend(t)
	b.JSON(http.MethodGet, "/mi-ruta/", http.StatusOK, routePayload(order(12, "en_camino", true), order(15, "en_camino", true)))
	b.Handle(http.MethodPatch, "/pedidos/12/", func(w http.ResponseWriter, _ *http.Request) {
		b.JSON(http.MethodGet, "/mi-ruta/", http.StatusInternalServerError, map[string]string{"error": "boom"})
		tu.WriteJSON(w, http.StatusOK, order(12, "entregado", true))
	})
	c, _ := newController(t, b, Options{Confirmer: &answer{yes: true}})
	before, err := c.Load(context.Background())
	require.NoError(t, err)

	v, err := c.MarkDelivered(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Mutations())
	assert.Equal(t, 2, b.Count(http.MethodGet, "/mi-ruta/"))

	assert.Equal(t, ViewRoute, v.Kind)
	assert.True(t, v.Stale)
	var apiErr *api.Error
	require.True(t, errors.As(v.ReloadErr, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)

	o, ok := v.Route.Find(12)
	require.True(t, ok)
	assert.Equal(t, models.OrderStatusDelivered, o.Status)
	earlier, _ := before.Route.Find(12)
	assert.Equal(t, models.OrderStatusEnRoute, earlier.Status)

	// The controller still holds a usable route for the next stop.
	assert.Equal(t, ViewRoute, c.View().Kind)
	b.JSON(http.MethodPatch, "/pedidos/15/", http.StatusOK, order(15, "entregado", true))
	_, err = c.MarkDelivered(context.Background(), 15)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Count(http.MethodPatch, "/pedidos/15/"))

	// A second delivery of the same order is caught locally.
	_, err = c.MarkDelivered(context.Background(), 12)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestMarkDelivered_ConfirmedPatchesAndReloads(t *testing.T) {
	b := tu.NewBackend(t)
	b.JSON(http.MethodGet, "/mi-ruta/", http.StatusOK, routePayload(order(12, "en_camino", true), order(15, "en_camino", true)))
	b.Handle(http.MethodPatch, "/pedidos/12/", func(w http.ResponseWriter, _ *http.Request) {
		b.JSON(http.MethodGet, "/mi-ruta/", http.StatusOK, routePayload(order(15, "en_camino", true)))
		tu.WriteJSON(w, http.StatusOK, order(12, "entregado", true))
	})
	c, _ := newController(t, b, Options{Confirmer: &answer{yes: true}})
	_, err := c.Load(context.Background())
	require.NoError(t, err)

	v, err := c.MarkDelivered(context.Background(), 12)
	require.NoError(t, err)

	assert.Equal(t, 1, b.Mutations())
	req, _ := b.Last(http.MethodPatch, "/pedidos/12/")
	assert.JSONEq(t, `{"estado":"entregado"}`, string(req.Body))
	assert.Equal(t, 2, b.Count(http.MethodGet, "/mi-ruta/"))
	_, still := v.Route.Find(12)
	assert.False(t, still)
}

func TestMarkDelivered_LocalChecks(t *testing.T) {
	b := tu.NewBackend(t)
	b.JSON(http.MethodGet, "/mi-ruta/", http.StatusOK, routePayload(order(12, "pendiente", true)))
	a := &answer{yes: true}
	c, _ := newController(t, b, Options{Confirmer: a})

	_, err := c.MarkDelivered(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotInRoute)

	_, err = c.MarkDelivered(context.Background(), 12)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.Empty(t, a.prompts)
	assert.Zero(t, b.Mutations())
}

func TestMarkDelivered_FailureKeepsView(t *testing.T) {
	b := tu.NewBackend(t)
	b.JSON(http.MethodGet, "/mi-ruta/", http.StatusOK, routePayload(order(12, "en_camino", true)))
	b.JSON(http.MethodPatch, "/pedidos/12/", http.StatusInternalServerError, map[string]string{"error": "db down"})
	c, _ := newController(t, b, Options{Confirmer: &answer{yes: true}})

	_, err := c.MarkDelivered(context.Background(), 12)
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	o, ok := c.View().Route.Find(12)
	require.True(t, ok)
	assert.Equal(t, models.OrderStatusEnRoute, o.Status)
	assert.Equal(t, 1, b.Count(http.MethodGet, "/mi-ruta/"))
}

func TestReportIncident(t *testing.T) {
	b := tu.NewBackend(t)
	b.JSON(http.MethodPost, "/conductor/incidencia/", http.StatusCreated, map[string]string{"mensaje": "Reportado."})
	n := &nav{}
	c, _ := newController(t, b, Options{Navigator: n})

	_, err := c.ReportIncident(context.Background(), "mechanical", "   ")
	assert.ErrorIs(t, err, ErrEmptyDescription)
	_, err = c.ReportIncident(context.Background(), "weather", "lluvia")
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Zero(t, b.Mutations())

	msg, err := c.ReportIncident(context.Background(), "customer-absent", "  nadie en casa ")
	require.NoError(t, err)
	assert.Equal(t, "Reportado.", msg)
	assert.Equal(t, 1, n.done)
	req, _ := b.Last(http.MethodPost, "/conductor/incidencia/")
	assert.JSONEq(t, `{"tipo":"Cliente","descripcion":"nadie en casa"}`, string(req.Body))

	_, err = c.ReportIncident(context.Background(), "", "bloqueo")
	require.NoError(t, err)
	req, _ = b.Last(http.MethodPost, "/conductor/incidencia/")
	assert.JSONEq(t, `{"tipo":"Trafico","descripcion":"bloqueo"}`, string(req.Body))
}

func TestClose_DropsLateResults(t *testing.T) {
	b := tu.NewBackend(t)
	c, _ := newController(t, b, Options{})
	b.Handle(http.MethodGet, "/mi-ruta/", func(w http.ResponseWriter, _ *http.Request) {
		c.Close()
		tu.WriteJSON(w, http.StatusOK, map[string]string{"mensaje": "No tienes rutas asignadas."})
	})

	_, err := c.Load(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, ViewKind(0), c.View().Kind)

	_, err = c.History(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 1, len(b.Requests()))
}

func TestHistory(t *testing.T) {
	b := tu.NewBackend(t)
	b.JSON(http.MethodGet, "/conductor/historial/", http.StatusOK, []map[string]any{order(3, "entregado", true)})
	c, _ := newController(t, b, Options{})

	got, err := c.History(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.OrderStatusDelivered, got[0].Status)
}
