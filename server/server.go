package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-admin-console/authapi"
	"github.com/jrsteele09/go-admin-console/internal/config"
	"github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/monitor"
	"github.com/jrsteele09/go-admin-console/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// SessionStore is the session surface the console routes drive.
type SessionStore interface {
	Login(ctx context.Context, credentials authapi.Credentials) session.LoginResult
	Logout(ctx context.Context)
	RefreshSession(ctx context.Context) bool
	ValidateSession(ctx context.Context) error
	Snapshot() session.Snapshot
	Info() session.Info
	DebugTokens() map[string]session.KeyPresence
}

// ActivityTracker receives activity from guarded routes and the activity endpoint.
type ActivityTracker interface {
	Touch(ev monitor.Event)
	State() monitor.State
	Inactive() bool
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PRODUCTION")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	sessions SessionStore
	activity ActivityTracker
	gatherer prometheus.Gatherer
}

type Option func(*Server)

// WithGatherer exposes gatherer on the metrics route.
func WithGatherer(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

func New(config config.Config, sessions SessionStore, activity ActivityTracker, opts ...Option) (*Server, error) {
	if sessions == nil {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "[Server New] session store is required")
	}
	if activity == nil {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "[Server New] activity tracker is required")
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   config,
		sessions: sessions,
		activity: activity,
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Debug().Msgf("[%-19s] %s", color+paddedMethod+ResetColor, path)
}
