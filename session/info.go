package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-admin-console/internal/utils"
	"github.com/jrsteele09/go-admin-console/storage"
)

// Session status labels.
const (
	StatusNoSession = "No Session"
	StatusActive    = "Active"
	StatusExpired   = "Expired"
)

// Info is the read-only view of the current session rendered by the
// session information page.
type Info struct {
	Authenticated bool       `json:"authenticated"`
	Email         string     `json:"email,omitempty"`
	Username      string     `json:"username,omitempty"`
	Role          string     `json:"role,omitempty"`
	Permissions   []string   `json:"permissions"`
	SessionID     string     `json:"session_id,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     string     `json:"created_at,omitempty"`
	ExpiresAt     string     `json:"expires_at,omitempty"`
	LastActivity  string     `json:"last_activity,omitempty"`
	HasToken      bool       `json:"has_token"`
	TokenExpiry   *time.Time `json:"token_expiry,omitempty"`
}

// KeyPresence reports which store holds a persisted key.
type KeyPresence struct {
	Primary  bool `json:"primary"`
	Fallback bool `json:"fallback"`
}

func buildInfo(snap Snapshot, token string, now time.Time) Info {
	info := Info{
		Authenticated: snap.IsAuthenticated(),
		Permissions:   snap.Permissions().Slice(),
		SessionID:     snap.SessionID(),
		Status:        sessionStatus(snap.SessionID(), snap.SessionData(), now),
		HasToken:      token != "",
	}
	if info.Authenticated {
		info.Email = snap.User().Email()
		info.Username = snap.User().DisplayName()
		info.Role = snap.Permissions().RoleLabel()
	}
	data := map[string]any(snap.SessionData())
	info.CreatedAt, _ = utils.StringValue(data, "created_at")
	info.ExpiresAt, _ = utils.StringValue(data, "expires_at")
	info.LastActivity, _ = utils.StringValue(data, "last_activity")
	info.TokenExpiry = tokenExpiry(token)
	return info
}

// sessionStatus is Expired only when the server-supplied expiry parses and
// has passed; an unparseable expiry is treated as active.
func sessionStatus(sessionID string, data Data, now time.Time) string {
	if sessionID == "" {
		return StatusNoSession
	}
	raw, ok := utils.StringValue(data, "expires_at")
	if !ok {
		return StatusActive
	}
	expires, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return StatusActive
	}
	if expires.Before(now) {
		return StatusExpired
	}
	return StatusActive
}

// tokenExpiry reads the exp claim of a JWT auth token. The signature is not
// checked: the console never trusts the token, it only displays it.
func tokenExpiry(token string) *time.Time {
	if token == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	return utils.TimePtr(exp.Time)
}

func presence(repo storage.Repo, key string) bool {
	v, err := repo.Get(key)
	return err == nil && v != ""
}
