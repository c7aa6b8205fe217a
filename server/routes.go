package server

import (
	"net/http"

	"github.com/jrsteele09/go-admin-console/permissions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// adminView is a console page and the capability needed to open it.
type adminView struct {
	name     string
	pattern  string
	required string
}

var adminViews = []adminView{
	{name: "dashboard", pattern: RouteDashboard + "{$}", required: permissions.Read},
	{name: "events", pattern: RouteEvents, required: permissions.Read},
	{name: "companies", pattern: RouteCompanies, required: permissions.Read},
	{name: "categories", pattern: RouteCategories, required: permissions.Read},
	{name: "cities", pattern: RouteCities, required: permissions.Read},
	{name: "countries", pattern: RouteCountries, required: permissions.Read},
	{name: "orders", pattern: RouteOrders, required: permissions.Read},
	{name: "services", pattern: RouteServices, required: permissions.Read},
	{name: "users", pattern: RouteUsers, required: permissions.ManageUsers},
	{name: "settings", pattern: RouteSettings, required: permissions.ManageSettings},
}

func (s *Server) initRoutes() {
	// PAGES
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteUnauthorized, ChainMiddleware(s.UnauthorizedPageHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteInsufficientPermissions, ChainMiddleware(s.InsufficientPermissionsPageHandler(), s.PageMiddleware()...))

	// LOGIN
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteAuthLogin, ChainMiddleware(noContent, s.APIMiddleware()...))

	// SESSION
	s.RegisterRouteHandler("GET "+RouteSession, ChainMiddleware(s.SessionInfoHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSessionRefresh, ChainMiddleware(s.SessionRefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSessionValidate, ChainMiddleware(s.SessionValidateHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSessionActivity, ChainMiddleware(s.SessionActivityHandler(), s.APIMiddleware()...))
	if s.env == "DEV" {
		s.RegisterRouteHandler("GET "+RouteSessionDebug, ChainMiddleware(s.SessionDebugHandler(), s.APIMiddleware()...))
	}

	// ADMIN VIEWS (guarded by the permission gate)
	for _, view := range adminViews {
		s.RegisterRouteHandler("GET "+view.pattern, ChainMiddleware(s.AdminViewHandler(view.name), s.PageMiddleware(s.RequireAdmin(view.required))...))
	}

	// OPERATIONAL
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
}

func noContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
