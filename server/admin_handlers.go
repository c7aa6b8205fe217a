package server

import (
	"net/http"

	"github.com/jrsteele09/go-admin-console/session"
)

// AdminViewData is the payload every console view renders from.
type AdminViewData struct {
	View string               `json:"view"`
	User AdminUser            `json:"user"`
	Can  session.Capabilities `json:"can"`
	Role string               `json:"role"`
}

type AdminUser struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

// AdminViewHandler renders a console view for the admin admitted by RequireAdmin.
func (s *Server) AdminViewHandler(view string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := snapshotFromContext(r.Context())
		if !ok {
			snap = s.sessions.Snapshot()
		}

		writeJSON(w, http.StatusOK, AdminViewData{
			View: view,
			User: AdminUser{
				Email:    snap.User().Email(),
				Username: snap.User().DisplayName(),
			},
			Can:  snap.Can(),
			Role: snap.Permissions().RoleLabel(),
		})
	}
}
