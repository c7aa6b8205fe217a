// Package authapi talks to the remote admin Auth API: login, logout and the
// profile endpoint used both for session refresh and explicit validation.
package authapi

import (
	"context"
)

// Credentials are the login form fields.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the login body normalized through the extraction rules.
type LoginResponse struct {
	User map[string]any
	// Permissions is nil when the body carried neither permissions nor roles.
	Permissions  []string
	AuthToken    string
	SessionToken string
	Session      map[string]any
}

// ProfileResponse is the profile body normalized through the extraction rules.
type ProfileResponse struct {
	SessionID string
	Session   map[string]any
}

// Client is the set of Auth API operations the session store consumes.
type Client interface {
	Login(ctx context.Context, credentials Credentials) (*LoginResponse, error)
	// Logout authenticates with whatever token the client's token source holds.
	Logout(ctx context.Context) error
	// Profile calls the versioned profile endpoint used for periodic refresh.
	Profile(ctx context.Context, token string) (*ProfileResponse, error)
	// Validate calls the unversioned profile endpoint used for explicit validation.
	Validate(ctx context.Context, token string) (*ProfileResponse, error)
}
