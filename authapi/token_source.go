package authapi

import (
	"github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/storage"
	"golang.org/x/oauth2"
)

// StoreTokenSource reads the bearer token lazily from a storage repo on
// every request, so a dual store resolves it primary first, then fallback.
type StoreTokenSource struct {
	repo storage.Repo
}

var _ oauth2.TokenSource = StoreTokenSource{}

func NewStoreTokenSource(repo storage.Repo) StoreTokenSource {
	return StoreTokenSource{repo: repo}
}

func (s StoreTokenSource) Token() (*oauth2.Token, error) {
	v, err := s.repo.Get(storage.KeyAuthToken)
	if err != nil {
		return nil, errors.Wrapf(err, "[StoreTokenSource Token]")
	}
	return bearer(v), nil
}

// SessionToken returns the persisted session id, or "" when there is none.
func (s StoreTokenSource) SessionToken() string {
	v, err := s.repo.Get(storage.KeySessionID)
	if err != nil {
		return ""
	}
	return v
}

func bearer(token string) *oauth2.Token {
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
}
