package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-admin-console/authapi"
	"github.com/rs/zerolog/log"
)

const maxLoginBody = 64 << 10

// PageData is the payload of the public console pages.
type PageData struct {
	Page          string `json:"page"`
	AppName       string `json:"app_name"`
	Title         string `json:"title,omitempty"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	From          string `json:"from,omitempty"`
	Authenticated bool   `json:"authenticated"`
	Back          string `json:"back,omitempty"`
}

// LoginPageHandler serves the login page. The from parameter is echoed so
// the form can return the admin to the view they asked for.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.sessions.Snapshot()
		writeJSON(w, http.StatusOK, PageData{
			Page:          "login",
			AppName:       s.config.GetAppName(),
			Title:         "Admin Login",
			Error:         r.URL.Query().Get("error"),
			From:          r.URL.Query().Get("from"),
			Authenticated: snap.IsAuthenticated(),
		})
	}
}

func (s *Server) UnauthorizedPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, PageData{
			Page:          "unauthorized",
			AppName:       s.config.GetAppName(),
			Title:         "Access Denied",
			Message:       "You don't have permission to access the admin panel. Only authorized administrators can view this content.",
			Authenticated: s.sessions.Snapshot().IsAuthenticated(),
			Back:          RouteLogin,
		})
	}
}

func (s *Server) InsufficientPermissionsPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, PageData{
			Page:          "insufficient-permissions",
			AppName:       s.config.GetAppName(),
			Title:         "Insufficient Permissions",
			Message:       "You don't have the required permissions to access this feature. Please contact your administrator to request additional access.",
			Authenticated: s.sessions.Snapshot().IsAuthenticated(),
			Back:          RouteDashboard,
		})
	}
}

// LoginSubmissionHandler accepts credentials as JSON or as a form post and
// answers with the login result. HTMX callers are also told where to go.
// A form post that fails is sent back to the login page with the error.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		credentials, from, err := parseLoginRequest(w, r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid login request"})
			return
		}
		if strings.TrimSpace(credentials.Email) == "" || credentials.Password == "" {
			if !isJSONRequest(r) {
				redirectWithError(w, r, loginLocation(from), "Please fill in all fields")
				return
			}
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Please fill in all fields"})
			return
		}

		result := s.sessions.Login(r.Context(), credentials)
		if !result.Success {
			if result.Error == "" {
				result.Error = "Login failed. Please try again."
			}
			if !isJSONRequest(r) {
				redirectWithError(w, r, loginLocation(from), result.Error)
				return
			}
			writeJSON(w, http.StatusUnauthorized, result)
			return
		}

		if isHTMXRequest(r) {
			w.Header().Set("HX-Redirect", safeReturnPath(from))
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func parseLoginRequest(w http.ResponseWriter, r *http.Request) (authapi.Credentials, string, error) {
	var credentials authapi.Credentials
	r.Body = http.MaxBytesReader(w, r.Body, maxLoginBody)

	if isJSONRequest(r) {
		var body struct {
			authapi.Credentials
			From string `json:"from"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return credentials, "", err
		}
		from := body.From
		if from == "" {
			from = r.URL.Query().Get("from")
		}
		return body.Credentials, from, nil
	}

	if err := r.ParseForm(); err != nil {
		return credentials, "", err
	}
	credentials.Email = r.FormValue("email")
	credentials.Password = r.FormValue("password")
	return credentials, r.FormValue("from"), nil
}

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// LogoutHandler ends the session. Logout never fails from the caller's
// point of view.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sessions.Logout(r.Context())
		if isHTMXRequest(r) {
			w.Header().Set("HX-Redirect", RouteLogin)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HealthHandler reports liveness and whether the session store finished
// initializing.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.sessions.Snapshot()
		status := http.StatusOK
		state := "ok"
		if snap.Loading() {
			status = http.StatusServiceUnavailable
			state = "initializing"
		}
		writeJSON(w, status, map[string]any{
			"status":        state,
			"authenticated": snap.IsAuthenticated(),
			"monitor":       s.activity.State().String(),
		})
		log.Trace().Str("status", state).Msg("Health check")
	}
}
