package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	APIConfig
	SessionConfig
	CookieConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetLogLevel() string
	GetEnv() string
	IsProduction() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetLoginPath() string
	GetProfilePath() string
	GetValidatePath() string
	GetLogoutPath() string
}

type SessionConfig interface {
	GetRefreshInterval() time.Duration
	GetInactivityTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	Cors
	API
	Session
	Cookie
}

// Option overrides configuration values, typically from command line flags.
type Option func(*mainConfig)

// WithOverride sets a value for envVar that takes precedence over the environment.
func WithOverride(envVar, value string) Option {
	return func(c *mainConfig) {
		if value == "" {
			return
		}
		c.EnvVars.overrides[envVar] = value
	}
}

func New(options ...Option) Config {
	overrides := make(map[string]string)
	c := mainConfig{
		EnvVars: EnvVars{overrides: overrides},
		API:     API{overrides: overrides},
		Session: Session{overrides: overrides},
	}
	for _, opt := range options {
		opt(&c)
	}
	c.Cookie = Cookie{secure: c.EnvVars.IsProduction()}
	return c
}
