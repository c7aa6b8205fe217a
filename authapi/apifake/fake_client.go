package apifake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-admin-console/authapi"
	"github.com/pkg/errors"
)

var _ authapi.Client = (*FakeClient)(nil)

// FakeClient is a programmable Auth API. Each operation delegates to its
// func field when set; unset operations fail with ErrNotConfigured.
type FakeClient struct {
	LoginFunc    func(ctx context.Context, credentials authapi.Credentials) (*authapi.LoginResponse, error)
	LogoutFunc   func(ctx context.Context) error
	ProfileFunc  func(ctx context.Context, token string) (*authapi.ProfileResponse, error)
	ValidateFunc func(ctx context.Context, token string) (*authapi.ProfileResponse, error)

	lock  sync.Mutex
	calls map[string]int
	// Tokens records the token passed to Profile and Validate in call order.
	tokens []string
}

// ErrNotConfigured is returned by operations without a func set.
var ErrNotConfigured = errors.New("fake auth api: operation not configured")

func NewFakeClient() *FakeClient {
	return &FakeClient{calls: make(map[string]int)}
}

// Calls returns how many times op ("Login", "Logout", "Profile", "Validate") was invoked.
func (f *FakeClient) Calls(op string) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.calls[op]
}

// TotalCalls returns the number of calls across all operations.
func (f *FakeClient) TotalCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *FakeClient) Tokens() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.tokens...)
}

func (f *FakeClient) record(op, token string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls[op]++
	if token != "" {
		f.tokens = append(f.tokens, token)
	}
}

func (f *FakeClient) Login(ctx context.Context, credentials authapi.Credentials) (*authapi.LoginResponse, error) {
	f.record("Login", "")
	if f.LoginFunc == nil {
		return nil, ErrNotConfigured
	}
	return f.LoginFunc(ctx, credentials)
}

func (f *FakeClient) Logout(ctx context.Context) error {
	f.record("Logout", "")
	if f.LogoutFunc == nil {
		return ErrNotConfigured
	}
	return f.LogoutFunc(ctx)
}

func (f *FakeClient) Profile(ctx context.Context, token string) (*authapi.ProfileResponse, error) {
	f.record("Profile", token)
	if f.ProfileFunc == nil {
		return nil, ErrNotConfigured
	}
	return f.ProfileFunc(ctx, token)
}

func (f *FakeClient) Validate(ctx context.Context, token string) (*authapi.ProfileResponse, error) {
	f.record("Validate", token)
	if f.ValidateFunc == nil {
		return nil, ErrNotConfigured
	}
	return f.ValidateFunc(ctx, token)
}
