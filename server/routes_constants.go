package server

import "github.com/jrsteele09/go-admin-console/gate"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Public pages
	RouteLogin                   = gate.LoginPath
	RouteUnauthorized            = gate.UnauthorizedPath
	RouteInsufficientPermissions = gate.InsufficientPermissionsPath

	// Auth Routes - Login & Logout
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"

	// Session Routes
	RouteSession         = "/session"
	RouteSessionRefresh  = "/session/refresh"
	RouteSessionValidate = "/session/validate"
	RouteSessionActivity = "/session/activity"
	RouteSessionDebug    = "/session/debug"

	// Admin Views
	RouteDashboard  = "/"
	RouteEvents     = "/events"
	RouteCompanies  = "/companies"
	RouteCategories = "/categories"
	RouteCities     = "/cities"
	RouteCountries  = "/countries"
	RouteOrders     = "/orders"
	RouteServices   = "/services"
	RouteUsers      = "/users"
	RouteSettings   = "/settings"

	// Operational
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
