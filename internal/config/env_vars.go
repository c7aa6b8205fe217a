package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	PortEnvVar       = "PORT"
	AppNameEnvVar    = "APP_NAME"
	FolderEnvVar     = "FOLDER"
	LogLevelEnvVar   = "LOG_LEVEL"
	EnvironmentVar   = "ENV"
	productionEnvVal = "PRODUCTION"
)

type EnvVars struct {
	overrides map[string]string
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := lookup(e.overrides, PortEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return lookup(e.overrides, AppNameEnvVar, "Admin Console")
}

func (e EnvVars) GetDataFolder() string {
	return lookup(e.overrides, FolderEnvVar, "./data")
}

func (e EnvVars) GetLogLevel() string {
	return strings.ToLower(lookup(e.overrides, LogLevelEnvVar, "info"))
}

func (e EnvVars) GetEnv() string {
	return strings.ToUpper(lookup(e.overrides, EnvironmentVar, "DEV"))
}

func (e EnvVars) IsProduction() bool {
	return e.GetEnv() == productionEnvVal
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvDuration parses envVar as a time.Duration, returning defaultValue when unset or invalid.
func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	return parseDuration(GetEnv(envVar, ""), defaultValue)
}

func lookup(overrides map[string]string, envVar, defaultValue string) string {
	if v, ok := overrides[envVar]; ok && v != "" {
		return v
	}
	return GetEnv(envVar, defaultValue)
}

func lookupDuration(overrides map[string]string, envVar string, defaultValue time.Duration) time.Duration {
	return parseDuration(lookup(overrides, envVar, ""), defaultValue)
}

func parseDuration(raw string, defaultValue time.Duration) time.Duration {
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
