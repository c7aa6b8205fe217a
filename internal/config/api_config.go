package config

import "time"

const (
	APIBaseURLEnvVar     = "API_BASE_URL"
	RequestTimeoutEnvVar = "REQUEST_TIMEOUT"
)

// API describes the remote admin REST API the console talks to.
type API struct {
	overrides map[string]string
}

var _ APIConfig = API{}

func (a API) GetAPIBaseURL() string {
	return lookup(a.overrides, APIBaseURLEnvVar, "https://admin.discount.com.ge/en/api/")
}

func (a API) GetRequestTimeout() time.Duration {
	return lookupDuration(a.overrides, RequestTimeoutEnvVar, 10*time.Second)
}

// GetLoginPath is versioned; the logout and validation endpoints are not.
func (API) GetLoginPath() string {
	return "v1/auth/login"
}

func (API) GetProfilePath() string {
	return "v1/auth/profile"
}

func (API) GetValidatePath() string {
	return "auth/profile"
}

func (API) GetLogoutPath() string {
	return "auth/logout"
}
