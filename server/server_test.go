package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-console/authapi"
	"github.com/jrsteele09/go-admin-console/authapi/apifake"
	"github.com/jrsteele09/go-admin-console/gate"
	"github.com/jrsteele09/go-admin-console/internal/clock"
	"github.com/jrsteele09/go-admin-console/internal/config"
	"github.com/jrsteele09/go-admin-console/monitor"
	"github.com/jrsteele09/go-admin-console/server"
	"github.com/jrsteele09/go-admin-console/session"
	"github.com/jrsteele09/go-admin-console/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type serverFixture struct {
	api     *apifake.FakeClient
	primary *storage.LocalStore
	store   *session.Store
	clock   *clock.FakeClock
	monitor *monitor.Monitor
	server  *server.Server
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	f := &serverFixture{
		api:     apifake.NewFakeClient(),
		primary: storage.NewLocalStore(),
		clock:   clock.Fake(time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)),
	}
	f.api.LogoutFunc = func(ctx context.Context) error { return nil }
	f.api.LoginFunc = func(ctx context.Context, c authapi.Credentials) (*authapi.LoginResponse, error) {
		if c.Password != "secret" {
			return nil, &authapi.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
		}
		return &authapi.LoginResponse{
			User:         map[string]any{"email": c.Email, "username": "root"},
			Permissions:  []string{"read"},
			AuthToken:    "tok-1",
			SessionToken: "sess-1",
		}, nil
	}

	registry := prometheus.NewRegistry()
	var err error
	f.store, err = session.NewStore(f.api, storage.NewDual(f.primary, storage.NewLocalStore()),
		session.WithMetrics(session.NewMetrics(registry)))
	require.NoError(t, err)

	f.monitor = monitor.New(f.store, monitor.WithClock(f.clock))
	f.store.Subscribe(f.monitor.Observe)
	t.Cleanup(f.monitor.Stop)

	cfg := config.New(config.WithOverride(config.EnvironmentVar, "DEV"))
	f.server, err = server.New(cfg, f.store, f.monitor, server.WithGatherer(registry))
	require.NoError(t, err)
	return f
}

func (f *serverFixture) do(t *testing.T, method, target string, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func (f *serverFixture) loginJSON(t *testing.T) {
	t.Helper()
	rec := f.do(t, http.MethodPost, server.RouteAuthLogin, `{"email":"root@example.com","password":"secret"}`,
		map[string]string{"Content-Type": "application/json"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := server.New(config.New(), nil, monitor.New(nil))
	require.Error(t, err)
}

func TestGuardedViews(t *testing.T) {
	t.Run("loading placeholder before initialize", func(t *testing.T) {
		f := newServerFixture(t)
		rec := f.do(t, http.MethodGet, server.RouteEvents, "", nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, gate.LoadingMessage, decode(t, rec)["message"])
	})

	t.Run("unauthenticated redirects to login with origin", func(t *testing.T) {
		f := newServerFixture(t)
		f.store.Initialize()

		rec := f.do(t, http.MethodGet, server.RouteEvents+"?page=2", "", nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/login?from="+url.QueryEscape("/events?page=2"), rec.Header().Get("Location"))
	})

	t.Run("htmx redirect uses header", func(t *testing.T) {
		f := newServerFixture(t)
		f.store.Initialize()

		rec := f.do(t, http.MethodGet, server.RouteUsers, "", map[string]string{"HX-Request": "true"})
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "/login?from=%2Fusers", rec.Header().Get("HX-Redirect"))
	})

	t.Run("non admin is unauthorized", func(t *testing.T) {
		f := newServerFixture(t)
		require.NoError(t, f.primary.Set(storage.KeyUser, `{"email":"viewer@example.com"}`))
		require.NoError(t, f.primary.Set(storage.KeyPermissions, `["read"]`))
		f.store.Initialize()

		rec := f.do(t, http.MethodGet, server.RouteEvents, "", nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, server.RouteUnauthorized, rec.Header().Get("Location"))
	})

	t.Run("admin lacking capability", func(t *testing.T) {
		f := newServerFixture(t)
		f.store.Initialize()
		f.loginJSON(t)

		rec := f.do(t, http.MethodGet, server.RouteSettings, "", nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, server.RouteInsufficientPermissions, rec.Header().Get("Location"))
	})

	t.Run("admin allowed", func(t *testing.T) {
		f := newServerFixture(t)
		f.store.Initialize()
		f.loginJSON(t)

		rec := f.do(t, http.MethodGet, server.RouteDashboard, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		require.Equal(t, "dashboard", body["view"])
		require.Equal(t, "Administrator", body["role"])
		can := body["can"].(map[string]any)
		require.Equal(t, true, can["can_read"])
		require.Equal(t, false, can["can_manage_users"])
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("guarded request counts as activity", func(t *testing.T) {
		f := newServerFixture(t)
		f.store.Initialize()
		f.loginJSON(t)
		require.Equal(t, monitor.Armed, f.monitor.State())

		f.clock.Advance(20 * time.Minute)
		require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, server.RouteOrders, "", nil).Code)
		f.clock.Advance(20 * time.Minute)
		require.False(t, f.monitor.Inactive())
	})
}

func TestLogin(t *testing.T) {
	t.Run("json success", func(t *testing.T) {
		f := newServerFixture(t)
		f.store.Initialize()
		f.loginJSON(t)
		require.True(t, f.store.IsAuthenticated())
	})

	t.Run("invalid credentials", func(t *testing.T) {
		f := newServerFixture(t)
		rec := f.do(t, http.MethodPost, server.RouteAuthLogin, `{"email":"root@example.com","password":"nope"}`,
			map[string]string{"Content-Type": "application/json"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decode(t, rec)
		require.Equal(t, false, body["success"])
		require.Equal(t, "Invalid credentials", body["error"])
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newServerFixture(t)
		rec := f.do(t, http.MethodPost, server.RouteAuthLogin, `{"email":"root@example.com"}`,
			map[string]string{"Content-Type": "application/json"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Please fill in all fields", decode(t, rec)["error"])
		require.Equal(t, 0, f.api.Calls("Login"))
	})

	t.Run("malformed json", func(t *testing.T) {
		f := newServerFixture(t)
		rec := f.do(t, http.MethodPost, server.RouteAuthLogin, `{"email":`,
			map[string]string{"Content-Type": "application/json"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("htmx form returns to origin", func(t *testing.T) {
		f := newServerFixture(t)
		form := url.Values{"email": {"root@example.com"}, "password": {"secret"}, "from": {"/orders"}}
		rec := f.do(t, http.MethodPost, server.RouteAuthLogin, form.Encode(), map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
			"HX-Request":   "true",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "/orders", rec.Header().Get("HX-Redirect"))
	})

	t.Run("off-site origin is ignored", func(t *testing.T) {
		f := newServerFixture(t)
		form := url.Values{"email": {"root@example.com"}, "password": {"secret"}, "from": {"//evil.example"}}
		rec := f.do(t, http.MethodPost, server.RouteAuthLogin, form.Encode(), map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
			"HX-Request":   "true",
		})
		require.Equal(t, server.RouteDashboard, rec.Header().Get("HX-Redirect"))
	})

	t.Run("failed form post returns to login with error", func(t *testing.T) {
		f := newServerFixture(t)
		form := url.Values{"email": {"root@example.com"}, "password": {"nope"}, "from": {"/orders"}}
		rec := f.do(t, http.MethodPost, server.RouteAuthLogin, form.Encode(), map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/login?from=%2Forders&error=Invalid+credentials", rec.Header().Get("Location"))
		require.False(t, f.store.IsAuthenticated())
	})

	t.Run("htmx form with missing fields", func(t *testing.T) {
		f := newServerFixture(t)
		form := url.Values{"email": {"root@example.com"}}
		rec := f.do(t, http.MethodPost, server.RouteAuthLogin, form.Encode(), map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
			"HX-Request":   "true",
		})
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "/login?error=Please+fill+in+all+fields", rec.Header().Get("HX-Redirect"))
		require.Equal(t, 0, f.api.Calls("Login"))
	})

	t.Run("cors preflight", func(t *testing.T) {
		f := newServerFixture(t)
		rec := f.do(t, http.MethodOptions, server.RouteAuthLogin, "", map[string]string{"Origin": "http://localhost:3000"})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestLogout(t *testing.T) {
	f := newServerFixture(t)
	f.store.Initialize()
	f.loginJSON(t)

	rec := f.do(t, http.MethodPost, server.RouteAuthLogout, "", map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, server.RouteLogin, rec.Header().Get("HX-Redirect"))
	require.False(t, f.store.IsAuthenticated())
	require.Equal(t, monitor.Idle, f.monitor.State())

	rec = f.do(t, http.MethodPost, server.RouteAuthLogout, "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSessionEndpoints(t *testing.T) {
	t.Run("info", func(t *testing.T) {
		f := newServerFixture(t)
		f.store.Initialize()
		f.loginJSON(t)

		rec := f.do(t, http.MethodGet, server.RouteSession, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		require.Equal(t, "root@example.com", body["email"])
		require.Equal(t, session.StatusActive, body["status"])
		require.Equal(t, "Armed", body["monitor"])
		require.Equal(t, true, body["has_token"])
		require.NotContains(t, rec.Body.String(), "tok-1")
	})

	t.Run("refresh without session", func(t *testing.T) {
		f := newServerFixture(t)
		f.store.Initialize()
		rec := f.do(t, http.MethodPost, server.RouteSessionRefresh, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, false, decode(t, rec)["success"])
		require.Equal(t, 0, f.api.Calls("Profile"))
	})

	t.Run("refresh", func(t *testing.T) {
		f := newServerFixture(t)
		f.store.Initialize()
		f.loginJSON(t)
		f.api.ProfileFunc = func(ctx context.Context, token string) (*authapi.ProfileResponse, error) {
			return &authapi.ProfileResponse{SessionID: "sess-2"}, nil
		}
		rec := f.do(t, http.MethodPost, server.RouteSessionRefresh, "", nil)
		require.Equal(t, true, decode(t, rec)["success"])
		require.Equal(t, "sess-2", f.store.Snapshot().SessionID())
	})

	t.Run("validate rejected", func(t *testing.T) {
		f := newServerFixture(t)
		f.store.Initialize()
		f.loginJSON(t)
		f.api.ValidateFunc = func(ctx context.Context, token string) (*authapi.ProfileResponse, error) {
			return nil, &authapi.APIError{StatusCode: http.StatusUnauthorized}
		}
		rec := f.do(t, http.MethodPost, server.RouteSessionValidate, "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.False(t, f.store.IsAuthenticated())
	})

	t.Run("activity", func(t *testing.T) {
		f := newServerFixture(t)
		rec := f.do(t, http.MethodPost, server.RouteSessionActivity, `{"event":"mousemove"}`, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = f.do(t, http.MethodPost, server.RouteSessionActivity, `{"event":"focus"}`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		rec = f.do(t, http.MethodPost, server.RouteSessionActivity, `nope`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("debug tokens", func(t *testing.T) {
		f := newServerFixture(t)
		f.store.Initialize()
		f.loginJSON(t)
		rec := f.do(t, http.MethodGet, server.RouteSessionDebug, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		require.Equal(t, map[string]any{"primary": true, "fallback": true}, body[storage.KeyAuthToken])
	})
}

func TestPages(t *testing.T) {
	f := newServerFixture(t)
	f.store.Initialize()

	rec := f.do(t, http.MethodGet, server.RouteLogin+"?from=%2Fusers", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "login", body["page"])
	require.Equal(t, "/users", body["from"])
	require.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))

	rec = f.do(t, http.MethodGet, server.RouteUnauthorized, "", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Access Denied", decode(t, rec)["title"])

	rec = f.do(t, http.MethodGet, server.RouteInsufficientPermissions, "", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Insufficient Permissions", decode(t, rec)["title"])
}

func TestOperationalRoutes(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, server.RouteHealth, "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	f.store.Initialize()
	rec = f.do(t, http.MethodGet, server.RouteHealth, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode(t, rec)["status"])

	f.loginJSON(t)
	rec = f.do(t, http.MethodGet, server.RouteMetrics, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `admin_console_session_logins_total{result="success"} 1`)
}

func TestRecoverMiddleware(t *testing.T) {
	f := newServerFixture(t)
	handler := server.ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}, f.server.RecoverMiddleware)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
