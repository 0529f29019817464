package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"dairyDispatch/internal/delivery"
	"dairyDispatch/internal/ui"
	"dairyDispatch/models"
)

func newRouteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "route",
		Short: "Show the active route with its path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireDriver(); err != nil {
				return err
			}
			ctl := app.controller(nil, nil)
			defer ctl.Close()
			v, err := ctl.Load(cmd.Context())
			if err != nil {
				return app.friendly(err)
			}
			return render(app.Out, app.output, v, func(out io.Writer) error {
				_, err := fmt.Fprintln(out, ui.RenderRoute(v, app.depot()))
				return err
			})
		},
	}
}

func newDeliverCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "deliver <order-id>",
		Short: "Mark an order of the active route as delivered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireDriver(); err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("bad order id %q", args[0])
			}
			ctl := app.controller(app.confirmer(yes), nil)
			defer ctl.Close()
			v, err := ctl.MarkDelivered(cmd.Context(), id)
			switch {
			case errors.Is(err, delivery.ErrNotConfirmed):
				fmt.Fprintln(app.Out, "Cancelled, nothing was changed")
				return nil
			case err != nil:
				return app.friendly(err)
			}
			return render(app.Out, app.output, v, func(out io.Writer) error {
				if v.Stale {
					fmt.Fprintf(out, "Order #%d delivered, route may be stale: %v\n", id, app.friendly(v.ReloadErr))
					return nil
				}
				fmt.Fprintf(out, "Order #%d delivered\n", id)
				_, err := fmt.Fprintln(out, ui.RenderRoute(v, app.depot()))
				return err
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

type navFunc func()

func (f navFunc) Done() { f() }

func newIncidentCmd(app *App) *cobra.Command {
	var category, description string
	cmd := &cobra.Command{
		Use:   "incident",
		Short: "Report an incident on the current route",
		Long: `Report an obstacle on the route. Types: traffic, mechanical,
customer-absent, accident, other (Spanish names are accepted too).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireDriver(); err != nil {
				return err
			}
			ctl := app.controller(nil, navFunc(func() {
				fmt.Fprintln(app.Out, "Back to route: dairyctl route")
			}))
			defer ctl.Close()
			msg, err := ctl.ReportIncident(cmd.Context(), category, description)
			if err != nil {
				return app.friendly(err)
			}
			fmt.Fprintln(app.Out, msg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "type", "t", string(models.IncidentTraffic), "incident type")
	cmd.Flags().StringVarP(&description, "description", "d", "", "what happened")
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Orders delivered by the current driver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireDriver(); err != nil {
				return err
			}
			ctl := app.controller(nil, nil)
			defer ctl.Close()
			orders, err := ctl.History(cmd.Context())
			if err != nil {
				return app.friendly(err)
			}
			return render(app.Out, app.output, orders, func(out io.Writer) error {
				_, err := fmt.Fprintln(out, ui.RenderOrders("Delivered", orders))
				return err
			})
		},
	}
}
