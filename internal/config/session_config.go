package config

import "time"

const (
	RefreshIntervalEnvVar   = "SESSION_REFRESH_INTERVAL"
	InactivityTimeoutEnvVar = "SESSION_INACTIVITY_TIMEOUT"
)

type Session struct {
	overrides map[string]string
}

var _ SessionConfig = Session{}

func (s Session) GetRefreshInterval() time.Duration {
	return lookupDuration(s.overrides, RefreshIntervalEnvVar, 15*time.Minute)
}

// GetInactivityTimeout only drives the inactivity log; it never ends a session.
func (s Session) GetInactivityTimeout() time.Duration {
	return lookupDuration(s.overrides, InactivityTimeoutEnvVar, 30*time.Minute)
}
