package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-admin-console/gate"
	"github.com/jrsteele09/go-admin-console/monitor"
	"github.com/jrsteele09/go-admin-console/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the session snapshot the gate allowed
const ContextKeySession ContextKey = "session"

// RequireAdmin guards a console view with the permission gate. An empty
// capability only requires an authenticated admin. Every guarded request
// counts as a click for the activity monitor.
func (s *Server) RequireAdmin(capability string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			snap := s.sessions.Snapshot()
			decision := gate.Evaluate(snap, capability, requestedLocation(r))

			switch decision.Kind {
			case gate.Loading:
				w.Header().Set("Retry-After", "1")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":  "loading",
					"message": gate.LoadingMessage,
				})
			case gate.Redirect:
				if decision.Target == gate.LoginPath {
					redirectToLogin(w, r, decision.From)
					return
				}
				redirectSuccess(w, r, decision.Target)
			case gate.Allow:
				s.activity.Touch(monitor.EventClick)
				ctx := context.WithValue(r.Context(), ContextKeySession, snap)
				next(w, r.WithContext(ctx))
			}
		}
	}
}

// snapshotFromContext returns the snapshot stored by RequireAdmin.
func snapshotFromContext(ctx context.Context) (session.Snapshot, bool) {
	snap, ok := ctx.Value(ContextKeySession).(session.Snapshot)
	return snap, ok
}
