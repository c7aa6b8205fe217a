package config

import (
	"net/http"
	"time"
)

type CookieConfig interface {
	GetCookieMaxAge() time.Duration
	GetCookieSecure() bool
	GetCookieSameSite() http.SameSite
	GetCookiePath() string
}

type Cookie struct {
	secure bool
}

var _ CookieConfig = Cookie{}

func (Cookie) GetCookieMaxAge() time.Duration {
	return 7 * 24 * time.Hour
}

// GetCookieSecure is only set outside development so plain http works locally.
func (c Cookie) GetCookieSecure() bool {
	return c.secure
}

func (Cookie) GetCookieSameSite() http.SameSite {
	return http.SameSiteLaxMode
}

func (Cookie) GetCookiePath() string {
	return "/"
}
