package ui

import (
	"fmt"
	"strings"

	"dairyDispatch/internal/auth"
	"dairyDispatch/internal/delivery"
	"dairyDispatch/internal/geo"
	"dairyDispatch/internal/routing"
	"dairyDispatch/models"
)

// RenderRoute draws the driver's route screen for a loaded view.
func RenderRoute(v delivery.View, depot models.Point) string {
	var sb strings.Builder
	switch v.Kind {
	case delivery.ViewCompleted:
		sb.WriteString(successStyle.Render("All done"))
		sb.WriteString("\n")
		sb.WriteString(v.Message)
		return docStyle.Render(sb.String())
	case delivery.ViewError:
		return docStyle.Render(errorStyle.Render(v.Message))
	case delivery.ViewRoute:
	default:
		return docStyle.Render(mutedStyle.Render("loading route..."))
	}

	r := v.Route
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Route #%d", r.ID)))
	sb.WriteString(fmt.Sprintf("  driver %s\n\n", r.DriverName))
	for i, o := range r.Orders {
		loc := mutedStyle.Render("no location")
		if p, ok := o.Location(); ok {
			loc = p.String()
		}
		sb.WriteString(fmt.Sprintf("%2d. #%-5d %-24s %-10s %s\n", i+1, o.ID, o.ClientLabel(), o.Status.Label(), loc))
		if o.Address != "" {
			sb.WriteString(mutedStyle.Render("      "+o.Address) + "\n")
		}
	}
	sb.WriteString("\n")
	path := "street network"
	if v.Path.Source == routing.SourceStraight {
		path = "straight line (routing service unavailable)"
	}
	stops := geo.CountDistinct(r.Stops(), geo.ArrivalRadiusMeters)
	sb.WriteString(fmt.Sprintf("Path: %d points, %.1f km, %d stops, %s\n", len(v.Path.Points), v.Path.DistanceKm, stops, path))
	if len(v.Unlocated) > 0 {
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("Not on map: %v", v.Unlocated)) + "\n")
	}
	if stops := r.Stops(); len(stops) > 0 {
		sb.WriteString("Navigate: " + routing.NavigationURL(r.OriginOr(depot), stops) + "\n")
	}
	return docStyle.Render(sb.String())
}

// RenderOrders lists orders one per line.
func RenderOrders(title string, orders []models.Order) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	if len(orders) == 0 {
		sb.WriteString(mutedStyle.Render("nothing here yet"))
		return docStyle.Render(sb.String())
	}
	for _, o := range orders {
		driver := o.AssignedDriver
		if driver == "" {
			driver = "-"
		}
		sb.WriteString(fmt.Sprintf("#%-5d %-24s %-10s %8.2f  %s\n", o.ID, o.ClientLabel(), o.Status.Label(), o.Total(), driver))
	}
	return docStyle.Render(sb.String())
}

// RenderNav lists the screens the session may open.
func RenderNav(items []auth.NavItem, who string) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("dairyctl"))
	if who != "" {
		sb.WriteString("  " + who)
	}
	sb.WriteString("\n\n")
	for _, it := range items {
		sb.WriteString(fmt.Sprintf("%-16s %s\n", it.Label, mutedStyle.Render(it.Command)))
	}
	return docStyle.Render(sb.String())
}
