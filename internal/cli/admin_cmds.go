package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"dairyDispatch/internal/api"
	"dairyDispatch/internal/logger"
	"dairyDispatch/internal/orderform"
	"dairyDispatch/internal/ui"
	"dairyDispatch/models"
)

func newOrdersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List and create orders",
	}
	cmd.AddCommand(newOrdersListCmd(app), newOrdersCreateCmd(app))
	return cmd
}

func newOrdersListCmd(app *App) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders, optionally filtered by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAdmin(); err != nil {
				return err
			}
			st := models.OrderStatus(status)
			if status != "" && !st.Valid() {
				return fmt.Errorf("unknown status %q (pendiente, en_camino or entregado)", status)
			}
			orders, err := app.API.ListOrders(cmd.Context(), api.OrderFilter{Status: st})
			if err != nil {
				return app.friendly(err)
			}
			return render(app.Out, app.output, orders, func(out io.Writer) error {
				return ordersTable(out, orders)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only orders with this status")
	return cmd
}

func ordersTable(out io.Writer, orders []models.Order) error {
	tw, row := tableWriter(out, "ID", "CLIENT", "STATUS", "TOTAL", "LOCATION", "DRIVER")
	for _, o := range orders {
		loc := "-"
		if p, ok := o.Location(); ok {
			loc = p.String()
		}
		driver := o.AssignedDriver
		if driver == "" {
			driver = "-"
		}
		row(o.ID, o.ClientLabel(), o.Status.Label(), fmt.Sprintf("%.2f", o.Total()), loc, driver)
	}
	return tw.Flush()
}

func newOrdersCreateCmd(app *App) *cobra.Command {
	var (
		clientID          int64
		newName, newPhone string
		lines             []string
		lat, lng          float64
		address           string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a pending order",
		Example: `  dairyctl orders create --client 4 --line 2:10 --line 5:3 --lat -17.39 --lng -66.16
  dairyctl orders create --new-client-name "Tienda Sol" --new-client-phone 70000000 --line 2:6 --lat -17.39 --lng -66.16`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAdmin(); err != nil {
				return err
			}
			var d orderform.Draft
			switch {
			case clientID > 0 && newName != "":
				return fmt.Errorf("use either --client or --new-client-name, not both")
			case clientID > 0:
				d.SelectClient(clientID)
			default:
				d.SetNewClient(newName, newPhone)
			}
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
				if err := d.SetLocation(lat, lng); err != nil {
					return err
				}
			}
			d.SetAddress(address)

			products, err := app.API.ListProducts(cmd.Context())
			if err != nil {
				return app.friendly(err)
			}
			catalog := make(map[int64]models.Product, len(products))
			for _, p := range products {
				catalog[p.ID] = p
			}
			for _, spec := range lines {
				id, qty, err := parseLine(spec)
				if err != nil {
					return err
				}
				p, ok := catalog[id]
				if !ok {
					return fmt.Errorf("product %d not found", id)
				}
				if err := d.AddLine(p, qty); err != nil {
					return err
				}
			}

			req, err := d.Request()
			if err != nil {
				return err
			}
			order, err := app.API.CreateOrder(cmd.Context(), req)
			if err != nil {
				return app.friendly(err)
			}
			app.Log.Info("order created", logger.Action("create_order"), slog.Int64("order_id", order.ID), slog.Int("lines", len(req.Lines)))
			return render(app.Out, app.output, order, func(out io.Writer) error {
				_, err := fmt.Fprintf(out, "Order #%d created (%s, total %.2f)\n", order.ID, order.Status.Label(), d.Total())
				return err
			})
		},
	}
	f := cmd.Flags()
	f.Int64Var(&clientID, "client", 0, "existing client ID")
	f.StringVar(&newName, "new-client-name", "", "name of a client to create with the order")
	f.StringVar(&newPhone, "new-client-phone", "", "phone of the new client")
	f.StringArrayVar(&lines, "line", nil, "product line as productID:quantity (repeatable)")
	f.Float64Var(&lat, "lat", 0, "delivery latitude")
	f.Float64Var(&lng, "lng", 0, "delivery longitude")
	f.StringVar(&address, "address", "", "delivery address text")
	return cmd
}

func parseLine(s string) (int64, int, error) {
	id, qty, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("line %q: want productID:quantity", s)
	}
	pid, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("line %q: bad product id", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(qty))
	if err != nil {
		return 0, 0, fmt.Errorf("line %q: bad quantity", s)
	}
	return pid, n, nil
}

func newDriversCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drivers",
		Short: "Driver roster",
	}
	var available bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List drivers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAdmin(); err != nil {
				return err
			}
			drivers, err := app.API.ListDrivers(cmd.Context())
			if err != nil {
				return app.friendly(err)
			}
			if available {
				kept := drivers[:0]
				for _, d := range drivers {
					if d.Status.Available() {
						kept = append(kept, d)
					}
				}
				drivers = kept
			}
			return render(app.Out, app.output, drivers, func(out io.Writer) error {
				tw, row := tableWriter(out, "ID", "NAME", "LICENSE", "VEHICLE", "STATUS")
				for _, d := range drivers {
					row(d.ID, d.Name, d.License, orDash(d.VehiclePlate), d.Status)
				}
				return tw.Flush()
			})
		},
	}
	list.Flags().BoolVar(&available, "available", false, "only drivers that can take a route")
	cmd.AddCommand(list)
	return cmd
}

func newProductsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Product catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List products and prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAdmin(); err != nil {
				return err
			}
			products, err := app.API.ListProducts(cmd.Context())
			if err != nil {
				return app.friendly(err)
			}
			return render(app.Out, app.output, products, func(out io.Writer) error {
				tw, row := tableWriter(out, "ID", "NAME", "PRICE")
				for _, p := range products {
					row(p.ID, p.Name, fmt.Sprintf("%.2f", p.Price.Float64()))
				}
				return tw.Flush()
			})
		},
	})
	return cmd
}

type assignOutput struct {
	Message    string  `json:"message"`
	DriverID   int64   `json:"driver_id"`
	OrderIDs   []int64 `json:"order_ids"`
	RefreshErr string  `json:"refresh_error,omitempty"`
}

func newAssignCmd(app *App) *cobra.Command {
	var (
		driverID int64
		orderIDs []int64
	)
	cmd := &cobra.Command{
		Use:     "assign",
		Short:   "Assign pending orders to a driver as one route",
		Example: "  dairyctl assign --driver 7 --orders 12,15",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAdmin(); err != nil {
				return err
			}
			c := app.cache()
			if err := c.Refresh(cmd.Context()); err != nil {
				return app.friendly(err)
			}
			eng := app.engine(c)
			sel := eng.Selection()
			for _, id := range orderIDs {
				if !sel.Contains(id) {
					sel.Toggle(id)
				}
			}
			sel.SetDriver(driverID)

			res, err := eng.Submit(cmd.Context())
			if err != nil {
				return app.friendly(err)
			}
			out := assignOutput{Message: res.Message, DriverID: res.DriverID, OrderIDs: res.OrderIDs}
			if res.RefreshErr != nil {
				out.RefreshErr = res.RefreshErr.Error()
			}
			return render(app.Out, app.output, out, func(w io.Writer) error {
				fmt.Fprintf(w, "%s: driver %d, orders %v\n", out.Message, out.DriverID, out.OrderIDs)
				if out.RefreshErr != "" {
					fmt.Fprintf(w, "warning: lists may be stale: %s\n", out.RefreshErr)
				}
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&driverID, "driver", 0, "driver ID")
	cmd.Flags().Int64SliceVar(&orderIDs, "orders", nil, "comma separated pending order IDs")
	return cmd
}

func newBoardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Interactive dispatch board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAdmin(); err != nil {
				return err
			}
			c := app.cache()
			b := ui.NewBoard(cmd.Context(), c, app.engine(c))
			p := tea.NewProgram(b, tea.WithInput(app.In), tea.WithOutput(app.Out), tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}
}

func newReportsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "Dispatcher dashboard summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAdmin(); err != nil {
				return err
			}
			r, err := app.API.Reports(cmd.Context())
			if err != nil {
				return app.friendly(err)
			}
			return render(app.Out, app.output, r, func(out io.Writer) error {
				k := r.KPIs
				fmt.Fprintf(out, "Orders this month: %d\n", k.OrdersThisMonth)
				fmt.Fprintf(out, "Success rate:      %.1f%%\n", k.SuccessRate)
				fmt.Fprintf(out, "Active drivers:    %d/%d\n", k.ActiveDrivers, k.TotalDrivers)
				fmt.Fprintf(out, "Incidents:         %d\n", k.Incidents)
				fmt.Fprintf(out, "Pending %d, en route %d, delivered today %d\n\n",
					r.ByStatus.Pending, r.ByStatus.EnRoute, r.ByStatus.DeliveredToday)

				tw, row := tableWriter(out, "TOP DRIVER", "DELIVERIES")
				for _, d := range r.TopDrivers {
					row(d.Name, d.Deliveries)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintln(out)
				tw, row = tableWriter(out, "TOP PRODUCT", "SOLD")
				for _, p := range r.TopProducts {
					row(p.Name, p.Sold)
				}
				return tw.Flush()
			})
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
