package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/monitor"
	"github.com/jrsteele09/go-admin-console/session"
)

// SessionInfoResponse is the session information view plus monitor state.
type SessionInfoResponse struct {
	session.Info
	Monitor  string `json:"monitor"`
	Inactive bool   `json:"inactive"`
}

func (s *Server) SessionInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, SessionInfoResponse{
			Info:     s.sessions.Info(),
			Monitor:  s.activity.State().String(),
			Inactive: s.activity.Inactive(),
		})
	}
}

// SessionRefreshHandler is the manual "refresh session" action. A failed
// refresh is reported, never turned into a logout.
func (s *Server) SessionRefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok := s.sessions.RefreshSession(r.Context())
		writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
	}
}

func (s *Server) SessionValidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.sessions.ValidateSession(r.Context())
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
		case errors.Is(err, errors.ErrNotAuthenticated), errors.Is(err, errors.ErrUnauthorized):
			writeJSONError(w, "unauthorized", "Session is not valid", http.StatusUnauthorized)
		default:
			writeJSONError(w, "upstream_error", "Session could not be validated", http.StatusBadGateway)
		}
	}
}

type activityRequest struct {
	Event string `json:"event"`
}

// SessionActivityHandler forwards browser activity events to the monitor.
func (s *Server) SessionActivityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req activityRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
			writeJSONError(w, "invalid_request", "Request body must be JSON", http.StatusBadRequest)
			return
		}
		ev, err := monitor.ParseEvent(req.Event)
		if err != nil {
			writeJSONError(w, "invalid_request", "Unknown activity event", http.StatusBadRequest)
			return
		}
		s.activity.Touch(ev)
		w.WriteHeader(http.StatusNoContent)
	}
}

// SessionDebugHandler reports which store holds each persisted key.
func (s *Server) SessionDebugHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.sessions.DebugTokens())
	}
}
