package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dairyDispatch/internal/auth"
	"dairyDispatch/internal/monitor"
	"dairyDispatch/models"
)

func newMonitorCmd(app *App) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Serve the live map feed over HTTP and websocket",
		Long: `monitor polls the backend and pushes map snapshots to websocket clients on /ws.
Dispatchers see pending and in-transit orders; drivers see their own route path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.RequireRole(app.Session, models.RoleAdmin, models.RoleDriver); err != nil {
				return explainAuth(err)
			}
			if listen == "" {
				listen = app.Cfg.Monitor.Listen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			hub := monitor.NewHub(app.Log, app.Metrics)
			defer hub.Close()
			p := &monitor.Poller{
				Hub:      hub,
				Depot:    app.depot(),
				Interval: app.Cfg.Monitor.Interval,
				Log:      app.Log,
			}
			if app.Session.Role() == models.RoleAdmin {
				p.Cache = app.cache()
			} else {
				ctl := app.controller(nil, nil)
				defer ctl.Close()
				p.Route = ctl
			}

			pollCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			go p.Run(pollCtx)

			return monitor.Serve(ctx, listen, monitor.NewRouter(hub, app.Metrics), app.Log)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from monitor.listen)")
	return cmd
}
