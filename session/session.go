// Package session owns the console's authentication state: who is logged
// in, what they may do, and the server-issued session token. State is
// written through to two client-side stores and restored from the primary
// one at startup.
package session

import (
	"github.com/jrsteele09/go-admin-console/internal/utils"
	"github.com/jrsteele09/go-admin-console/permissions"
)

// User is the identity object returned by the Auth API. Its shape is owned
// by the server; the console only reads email, username and name.
type User map[string]any

// Identifier returns the email, falling back to the username.
func (u User) Identifier() string {
	if v, ok := utils.StringValue(u, "email"); ok {
		return v
	}
	v, _ := utils.StringValue(u, "username")
	return v
}

func (u User) Email() string {
	v, _ := utils.StringValue(u, "email")
	return v
}

// DisplayName returns the username, falling back to name.
func (u User) DisplayName() string {
	if v, ok := utils.StringValue(u, "username"); ok {
		return v
	}
	v, _ := utils.StringValue(u, "name")
	return v
}

// Data is the server-supplied session metadata (created_at, expires_at,
// last_activity). The console displays and forwards it, never computes it.
type Data map[string]any

// LoginResult is what the view layer sees of a login attempt.
type LoginResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// state is the canonical in-memory session. A nil user means logged out.
type state struct {
	user        User
	permissions permissions.Set
	sessionID   string
	sessionData Data
	authToken   string
}

// Capabilities are the convenience flags the admin views render from.
type Capabilities struct {
	CanCreate         bool `json:"can_create"`
	CanRead           bool `json:"can_read"`
	CanUpdate         bool `json:"can_update"`
	CanDelete         bool `json:"can_delete"`
	CanManageUsers    bool `json:"can_manage_users"`
	CanManageSettings bool `json:"can_manage_settings"`
}

// Snapshot is an immutable copy of the session taken at one instant.
// Derived values are computed on every call and never stored.
type Snapshot struct {
	loading bool
	state   state
}

func (s Snapshot) Loading() bool {
	return s.loading
}

func (s Snapshot) User() User {
	return s.state.user
}

func (s Snapshot) Permissions() permissions.Set {
	return s.state.permissions
}

func (s Snapshot) SessionID() string {
	return s.state.sessionID
}

func (s Snapshot) SessionData() Data {
	return s.state.sessionData
}

// HasToken reports whether an auth token is held, without exposing it.
func (s Snapshot) HasToken() bool {
	return s.state.authToken != ""
}

func (s Snapshot) IsAuthenticated() bool {
	return s.state.user != nil
}

func (s Snapshot) IsAdmin() bool {
	return s.IsAuthenticated() && s.state.permissions.IsAdmin()
}

// HasPermission is false when logged out; otherwise admins hold the basic
// capabilities implicitly and super_admin holds every capability.
func (s Snapshot) HasPermission(capability string) bool {
	if !s.IsAuthenticated() {
		return false
	}
	return s.state.permissions.Grants(capability)
}

func (s Snapshot) Can() Capabilities {
	return Capabilities{
		CanCreate:         s.HasPermission(permissions.Create),
		CanRead:           s.HasPermission(permissions.Read),
		CanUpdate:         s.HasPermission(permissions.Update),
		CanDelete:         s.HasPermission(permissions.Delete),
		CanManageUsers:    s.HasPermission(permissions.ManageUsers),
		CanManageSettings: s.HasPermission(permissions.ManageSettings),
	}
}

func (st state) clone() state {
	out := st
	if st.user != nil {
		out.user = make(User, len(st.user))
		for k, v := range st.user {
			out.user[k] = v
		}
	}
	if st.sessionData != nil {
		out.sessionData = make(Data, len(st.sessionData))
		for k, v := range st.sessionData {
			out.sessionData[k] = v
		}
	}
	return out
}
