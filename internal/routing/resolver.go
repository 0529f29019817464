package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dairyDispatch/internal/geo"
	"dairyDispatch/internal/logger"
	"dairyDispatch/internal/metrics"
	"dairyDispatch/models"
)

// Source says how a Path was produced.
type Source string

const (
	SourceStreet   Source = "street"
	SourceStraight Source = "straight"
)

// Path is a renderable route geometry in [lat,lng] order.
type Path struct {
	Points     []models.Point `json:"points"`
	Source     Source         `json:"source"`
	DistanceKm float64        `json:"distance_km"`
	// Duration is only known for street paths.
	Duration time.Duration `json:"duration,omitempty"`
}

// LatLngs returns the points as [lat,lng] pairs for map layers.
func (p Path) LatLngs() [][2]float64 {
	out := make([][2]float64, len(p.Points))
	for i, pt := range p.Points {
		out[i] = pt.LatLng()
	}
	return out
}

// Config controls the street-routing service call.
type Config struct {
	BaseURL string
	Profile string
	Timeout time.Duration
}

// Resolver turns an origin and ordered stops into a path. It prefers the
// street network and falls back to straight segments; it never fails.
type Resolver struct {
	cfg     Config
	http    *http.Client
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewResolver(cfg Config, l *slog.Logger, m *metrics.Metrics) *Resolver {
	if cfg.Profile == "" {
		cfg.Profile = "driving"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Resolver{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     logger.OrDiscard(l),
		metrics: m,
	}
}

// Resolve keeps the stop order as given. A single failed service call
// immediately yields the straight-line path [origin, stops...].
func (r *Resolver) Resolve(ctx context.Context, origin models.Point, stops []models.Point) Path {
	if len(stops) == 0 {
		r.metrics.ObserveResolve(string(SourceStraight), "no_stops")
		return Path{Points: []models.Point{origin}, Source: SourceStraight}
	}
	path, err := r.street(ctx, origin, stops)
	if err == nil {
		r.metrics.ObserveResolve(string(SourceStreet), "ok")
		return path
	}
	reason := fallbackReason(err)
	r.metrics.ObserveResolve(string(SourceStraight), reason)
	r.log.Debug("street routing unavailable, using straight line",
		logger.Action("resolve_path"), slog.String("reason", reason), logger.Err(err))
	return Straight(origin, stops)
}

// Straight connects origin and stops directly in the given order.
func Straight(origin models.Point, stops []models.Point) Path {
	pts := make([]models.Point, 0, len(stops)+1)
	pts = append(pts, origin)
	pts = append(pts, stops...)
	return Path{Points: pts, Source: SourceStraight, DistanceKm: geo.PathLengthKm(pts)}
}

var (
	errNotOK   = errors.New("routing service returned non-Ok code")
	errNoRoute = errors.New("routing service found no route")
	errStatus  = errors.New("routing service returned non-2xx status")
	errBody    = errors.New("routing service returned an unreadable body")
)

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, errNotOK):
		return "not_ok"
	case errors.Is(err, errNoRoute):
		return "no_route"
	case errors.Is(err, errStatus):
		return "http_status"
	case errors.Is(err, errBody):
		return "bad_body"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return "timeout"
	}
	return "transport"
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// RequestURL builds the street-routing query for origin and stops.
func (r *Resolver) RequestURL(origin models.Point, stops []models.Point) string {
	coords := make([]string, 0, len(stops)+1)
	coords = append(coords, lonLat(origin))
	for _, s := range stops {
		coords = append(coords, lonLat(s))
	}
	return fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=geojson",
		r.cfg.BaseURL, r.cfg.Profile, strings.Join(coords, ";"))
}

func lonLat(p models.Point) string {
	return strconv.FormatFloat(p.Lng, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
}

func (r *Resolver) street(ctx context.Context, origin models.Point, stops []models.Point) (Path, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.RequestURL(origin, stops), nil)
	if err != nil {
		return Path{}, err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return Path{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Path{}, fmt.Errorf("%w: %d", errStatus, resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Path{}, fmt.Errorf("%w: %w", errBody, err)
	}
	if body.Code != "Ok" {
		return Path{}, fmt.Errorf("%w: %q", errNotOK, body.Code)
	}
	if len(body.Routes) == 0 || len(body.Routes[0].Geometry.Coordinates) == 0 {
		return Path{}, errNoRoute
	}

	route := body.Routes[0]
	pts := make([]models.Point, 0, len(route.Geometry.Coordinates))
	for _, c := range route.Geometry.Coordinates {
		if len(c) < 2 {
			return Path{}, fmt.Errorf("%w: malformed coordinate %v", errBody, c)
		}
		// Service order is [lon,lat].
		pts = append(pts, models.Point{Lat: c[1], Lng: c[0]})
	}
	return Path{
		Points:     pts,
		Source:     SourceStreet,
		DistanceKm: route.Distance / 1000,
		Duration:   time.Duration(route.Duration * float64(time.Second)),
	}, nil
}
