package session

import (
	"encoding/json"

	"github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/permissions"
	"github.com/jrsteele09/go-admin-console/storage"
)

// loadRecord reads the persisted record from repo. It returns a nil state
// when no user is stored and ErrMalformedRecord when a stored JSON field
// does not decode.
func loadRecord(repo storage.Repo) (*state, error) {
	rawUser, err := getOptional(repo, storage.KeyUser)
	if err != nil {
		return nil, err
	}
	if rawUser == "" {
		return nil, nil
	}

	var user User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, errors.Wrapf(errors.ErrMalformedRecord, "%s: %v", storage.KeyUser, err)
	}
	if user == nil {
		return nil, nil
	}

	st := &state{user: user}

	rawPerms, err := getOptional(repo, storage.KeyPermissions)
	if err != nil {
		return nil, err
	}
	if rawPerms != "" {
		if err := json.Unmarshal([]byte(rawPerms), &st.permissions); err != nil {
			return nil, errors.Wrapf(errors.ErrMalformedRecord, "%s: %v", storage.KeyPermissions, err)
		}
	}

	if st.sessionID, err = getOptional(repo, storage.KeySessionID); err != nil {
		return nil, err
	}

	rawData, err := getOptional(repo, storage.KeySessionData)
	if err != nil {
		return nil, err
	}
	if rawData != "" {
		if err := json.Unmarshal([]byte(rawData), &st.sessionData); err != nil {
			return nil, errors.Wrapf(errors.ErrMalformedRecord, "%s: %v", storage.KeySessionData, err)
		}
	}

	if st.authToken, err = getOptional(repo, storage.KeyAuthToken); err != nil {
		return nil, err
	}
	return st, nil
}

func getOptional(repo storage.Repo, key string) (string, error) {
	v, err := repo.Get(key)
	if errors.Is(err, errors.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "read %s", key)
	}
	return v, nil
}

func encodeUser(u User) string {
	return mustJSON(u, "{}")
}

func encodePermissions(p permissions.Set) string {
	return mustJSON(p, "[]")
}

func encodeData(d Data) string {
	if d == nil {
		return "{}"
	}
	return mustJSON(d, "{}")
}

// mustJSON falls back to empty when v holds values JSON cannot encode,
// which server-decoded maps never do.
func mustJSON(v any, empty string) string {
	b, err := json.Marshal(v)
	if err != nil {
		return empty
	}
	return string(b)
}
