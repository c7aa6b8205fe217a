package authapi

import (
	"encoding/json"
	"strconv"

	"github.com/jrsteele09/go-admin-console/internal/utils"
)

// rule names one location in a response body. Rules are evaluated in order
// and the first non-empty match wins; new server shapes are supported by
// adding rows, not branches.
type rule struct {
	name string
	path []string
}

var (
	userRules = []rule{
		{name: "user", path: []string{"user"}},
	}
	permissionRules = []rule{
		{name: "permissions", path: []string{"permissions"}},
		{name: "roles", path: []string{"roles"}},
	}
	authTokenRules = []rule{
		{name: "token", path: []string{"token"}},
		{name: "access_token", path: []string{"access_token"}},
	}
	loginSessionTokenRules = []rule{
		{name: "admin_session_token", path: []string{"admin_session_token"}},
		{name: "session_token", path: []string{"session_token"}},
		{name: "session.id", path: []string{"session", "id"}},
		{name: "session.session_id", path: []string{"session", "session_id"}},
	}
	profileSessionIDRules = []rule{
		{name: "session.id", path: []string{"session", "id"}},
		{name: "session.session_id", path: []string{"session", "session_id"}},
	}
	sessionRules = []rule{
		{name: "session", path: []string{"session"}},
	}
	errorMessageRules = []rule{
		{name: "message", path: []string{"message"}},
		{name: "detail", path: []string{"detail"}},
		{name: "error", path: []string{"error"}},
	}
)

// credentialFields never become part of the user record when the body has
// no user object and its top-level fields are used instead.
var credentialFields = map[string]struct{}{
	"token":               {},
	"access_token":        {},
	"refresh_token":       {},
	"admin_session_token": {},
	"session_token":       {},
	"session":             {},
	"permissions":         {},
	"roles":               {},
}

func lookupPath(body map[string]any, path []string) (any, bool) {
	var current any = body
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}

// firstString returns the first rule whose value is a non-empty string or a
// number, along with the matching rule name.
func firstString(body map[string]any, rules []rule) (string, string) {
	for _, r := range rules {
		v, ok := lookupPath(body, r.path)
		if !ok {
			continue
		}
		if s, ok := scalarString(v); ok {
			return s, r.name
		}
	}
	return "", ""
}

// firstStringList returns the first rule whose value is an array. An empty
// array is a match.
func firstStringList(body map[string]any, rules []rule) ([]string, bool) {
	for _, r := range rules {
		v, ok := lookupPath(body, r.path)
		if !ok {
			continue
		}
		if list, ok := v.([]any); ok {
			return utils.ToStringSlice(list), true
		}
	}
	return nil, false
}

func firstObject(body map[string]any, rules []rule) (map[string]any, bool) {
	for _, r := range rules {
		v, ok := lookupPath(body, r.path)
		if !ok {
			continue
		}
		if m, ok := v.(map[string]any); ok {
			return m, true
		}
	}
	return nil, false
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), t != ""
	}
	return "", false
}

func parseLogin(body map[string]any) *LoginResponse {
	resp := &LoginResponse{}

	if user, ok := firstObject(body, userRules); ok {
		resp.User = user
	} else {
		resp.User = make(map[string]any, len(body))
		for k, v := range body {
			if _, skip := credentialFields[k]; !skip {
				resp.User[k] = v
			}
		}
	}

	if perms, ok := firstStringList(body, permissionRules); ok {
		resp.Permissions = perms
	}
	resp.AuthToken, _ = firstString(body, authTokenRules)
	resp.SessionToken, _ = firstString(body, loginSessionTokenRules)
	resp.Session, _ = firstObject(body, sessionRules)
	return resp
}

func parseProfile(body map[string]any) *ProfileResponse {
	resp := &ProfileResponse{}
	resp.SessionID, _ = firstString(body, profileSessionIDRules)
	resp.Session, _ = firstObject(body, sessionRules)
	return resp
}

func errorMessage(body map[string]any) string {
	msg, _ := firstString(body, errorMessageRules)
	return msg
}
