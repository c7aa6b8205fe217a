// Package storage persists the authenticated session fields in two
// independent client-side stores: a cookie-like store that survives process
// restarts and a process-local key/value store used as a fallback.
package storage

// Keys under which the persisted record is written. The names match the
// cookies the console has always used so existing records stay readable.
const (
	KeyAuthToken   = "adminToken"
	KeyUser        = "adminUser"
	KeyPermissions = "adminPermissions"
	KeySessionID   = "admin_session_token"
	KeySessionData = "adminSessionData"
)

// Keys returns the five persisted keys.
func Keys() []string {
	return []string{KeyAuthToken, KeyUser, KeyPermissions, KeySessionID, KeySessionData}
}

// Repo is a string key/value store. Get returns errors.ErrKeyNotFound
// (from internal/errors) when the key is absent.
type Repo interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}
