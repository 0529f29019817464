package auth

import (
	"errors"
	"fmt"

	"dairyDispatch/models"
)

var (
	ErrUnauthenticated = errors.New("not logged in")
	ErrForbidden       = errors.New("not allowed for this role")
)

// Screen is a navigable section of the client.
type Screen string

const (
	ScreenLogin     Screen = "login"
	ScreenHome      Screen = "home"
	ScreenDrivers   Screen = "drivers"
	ScreenProducts  Screen = "products"
	ScreenOrders    Screen = "orders"
	ScreenLogistics Screen = "logistics"
	ScreenReports   Screen = "reports"
	ScreenMyRoute   Screen = "my-route"
	ScreenHistory   Screen = "history"
	ScreenIncident  Screen = "incident"
)

// NavItem is one entry of the role-specific navigation.
type NavItem struct {
	Screen  Screen `json:"screen" yaml:"screen"`
	Label   string `json:"label" yaml:"label"`
	Command string `json:"command" yaml:"command"`
}

var (
	adminNav = []NavItem{
		{ScreenHome, "Home", "dairyctl nav"},
		{ScreenDrivers, "Drivers", "dairyctl drivers list"},
		{ScreenProducts, "Products", "dairyctl products list"},
		{ScreenOrders, "Orders", "dairyctl orders list"},
		{ScreenLogistics, "Logistics", "dairyctl board"},
		{ScreenReports, "Reports", "dairyctl reports"},
	}
	driverNav = []NavItem{
		{ScreenHome, "Home", "dairyctl nav"},
		{ScreenMyRoute, "My route", "dairyctl route"},
		{ScreenHistory, "History", "dairyctl history"},
		{ScreenIncident, "Report incident", "dairyctl incident"},
	}
	guestNav = []NavItem{
		{ScreenLogin, "Log in", "dairyctl login"},
	}
)

// SessionReader is the read side of the session context.
type SessionReader interface {
	Authenticated() bool
	Role() models.Role
}

// NavigationFor returns the screens reachable by the session's role.
// Logout is always available to an authenticated user and is not listed.
func NavigationFor(s SessionReader) []NavItem {
	if s == nil || !s.Authenticated() {
		return guestNav
	}
	switch s.Role() {
	case models.RoleAdmin:
		return adminNav
	case models.RoleDriver:
		return driverNav
	default:
		return []NavItem{{ScreenHome, "Home", "dairyctl nav"}}
	}
}

// CanAccess reports whether the session may open screen.
func CanAccess(s SessionReader, screen Screen) bool {
	for _, it := range NavigationFor(s) {
		if it.Screen == screen {
			return true
		}
	}
	return false
}

// RequireRole ensures the session is authenticated with one of roles.
func RequireRole(s SessionReader, roles ...models.Role) error {
	if s == nil || !s.Authenticated() {
		return ErrUnauthenticated
	}
	r := s.Role()
	for _, want := range roles {
		if r == want {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrForbidden, r)
}

// RequireAdmin ensures the caller is a dispatcher.
func RequireAdmin(s SessionReader) error { return RequireRole(s, models.RoleAdmin) }

// RequireDriver ensures the caller is a driver.
func RequireDriver(s SessionReader) error { return RequireRole(s, models.RoleDriver) }
