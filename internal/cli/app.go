package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/viper"

	"dairyDispatch/internal/api"
	"dairyDispatch/internal/auth"
	"dairyDispatch/internal/cache"
	"dairyDispatch/internal/config"
	"dairyDispatch/internal/db"
	"dairyDispatch/internal/delivery"
	"dairyDispatch/internal/dispatch"
	"dairyDispatch/internal/logger"
	"dairyDispatch/internal/metrics"
	"dairyDispatch/internal/routing"
	"dairyDispatch/internal/session"
	"dairyDispatch/internal/ui"
	"dairyDispatch/models"
	"dairyDispatch/repository"
)

// App carries everything a command needs. It is built once per invocation
// in the root command's pre-run hook.
type App struct {
	v       *viper.Viper
	cfgFile string
	output  string

	In  io.Reader
	Out io.Writer
	Err io.Writer

	Cfg     *config.Config
	Log     *slog.Logger
	Metrics *metrics.Metrics
	DB      *sql.DB
	Session *session.Store
	API     *api.Client
}

func (a *App) setup(ctx context.Context) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.Cfg = cfg
	a.Log = logger.New(a.Err, "dairyctl", cfg.Log.Level, cfg.Log.Pretty)
	a.Metrics = metrics.New()

	d, err := db.Open(cfg.Session.Path)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	a.DB = d
	a.Session, err = session.Open(ctx, repository.NewSessionRepository(d))
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	a.API = api.New(cfg.API.BaseURL, a.Session, api.WithLogger(a.Log), api.WithMetrics(a.Metrics))
	a.Log.Debug("configuration loaded", logger.Action("startup"), slog.String("config", cfg.String()))
	return nil
}

// Close releases the session database.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func (a *App) depot() models.Point {
	return models.Point{Lat: a.Cfg.Routing.DepotLat, Lng: a.Cfg.Routing.DepotLng}
}

func (a *App) resolver() *routing.Resolver {
	return routing.NewResolver(routing.Config{
		BaseURL: a.Cfg.Routing.BaseURL,
		Profile: a.Cfg.Routing.Profile,
		Timeout: a.Cfg.Routing.Timeout,
	}, a.Log, a.Metrics)
}

func (a *App) cache() *cache.Cache { return cache.New(a.API, a.Log) }

func (a *App) engine(c *cache.Cache) *dispatch.Engine {
	return dispatch.NewEngine(&dispatch.Selection{}, a.API, c, c,
		dispatch.Config{RequireCoordinates: a.Cfg.Dispatch.RequireCoordinates}, a.Log, a.Metrics)
}

func (a *App) controller(confirm delivery.Confirmer, nav delivery.Navigator) *delivery.Controller {
	return delivery.NewController(a.API, a.resolver(), a.depot(), delivery.Options{
		Confirmer: confirm,
		Navigator: nav,
		Logger:    a.Log,
		Metrics:   a.Metrics,
	})
}

func (a *App) confirmer(yes bool) delivery.Confirmer {
	if yes {
		return ui.AutoConfirm(true)
	}
	return ui.PromptConfirmer{In: a.In, Out: a.Out}
}

// requireAdmin and requireDriver gate commands by the stored role.
func (a *App) requireAdmin() error  { return explainAuth(auth.RequireAdmin(a.Session)) }
func (a *App) requireDriver() error { return explainAuth(auth.RequireDriver(a.Session)) }

func explainAuth(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrUnauthenticated):
		return fmt.Errorf("%w: run `dairyctl login` first", err)
	default:
		return err
	}
}

// friendly turns backend failures into a one-line notice. Authorization
// failures point the user back to login.
func (a *App) friendly(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, api.ErrUnauthorized) {
		return fmt.Errorf("session rejected by the server, run `dairyctl login` again: %w", err)
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if m := apiErr.Message(); m != "" {
			return fmt.Errorf("%s (HTTP %d)", m, apiErr.StatusCode)
		}
	}
	if errors.Is(err, api.ErrTransport) {
		return fmt.Errorf("cannot reach the server at %s: %w", a.Cfg.API.BaseURL, err)
	}
	return err
}
