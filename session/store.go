package session

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-admin-console/authapi"
	"github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/permissions"
	"github.com/jrsteele09/go-admin-console/storage"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Store is the single authority over the console's session. All state
// transitions go through its methods; readers get Snapshots. Network calls
// are made without holding the lock, and results that arrive after a login
// or logout has replaced the session they were started for are discarded.
type Store struct {
	api            authapi.Client
	stores         *storage.Dual
	nowTime        func() time.Time
	metrics        *Metrics
	refreshTimeout time.Duration

	lock       sync.RWMutex
	loading    bool
	state      state
	generation uint64

	initOnce sync.Once
	refresh  singleflight.Group

	listenersLock sync.Mutex
	listeners     map[int]func(Snapshot)
	nextListener  int
}

// DefaultRefreshTimeout bounds a refresh when no WithRefreshTimeout is given.
const DefaultRefreshTimeout = 10 * time.Second

type StoreOption func(*Store)

// WithNowTime allows injecting a custom time function, useful for testing
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// WithRefreshTimeout bounds a shared refresh request.
func WithRefreshTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.refreshTimeout = d
		}
	}
}

func WithMetrics(m *Metrics) StoreOption {
	return func(s *Store) {
		s.metrics = m
	}
}

// NewStore creates a Store in the loading state. Call Initialize before use.
func NewStore(api authapi.Client, stores *storage.Dual, opts ...StoreOption) (*Store, error) {
	if api == nil {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "[NewStore] auth api client is required")
	}
	if stores == nil {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "[NewStore] storage is required")
	}
	s := &Store{
		api:            api,
		stores:         stores,
		nowTime:        time.Now,
		refreshTimeout: DefaultRefreshTimeout,
		loading:        true,
		listeners:      make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Initialize restores a session from the primary store without contacting
// the Auth API. A malformed record leaves the store logged out. Loading is
// cleared exactly once, whatever the outcome.
func (s *Store) Initialize() {
	s.initOnce.Do(func() {
		defer func() {
			s.lock.Lock()
			s.loading = false
			s.lock.Unlock()
			s.notify()
		}()

		restored, err := loadRecord(s.stores.Primary())
		if err != nil {
			log.Error().Err(err).Msg("Error initializing auth")
			s.metrics.restore(resultMalformed)
			return
		}
		if restored == nil {
			s.metrics.restore(resultEmpty)
			return
		}

		s.lock.Lock()
		s.state = *restored
		s.generation++
		s.lock.Unlock()

		s.metrics.restore(resultRestored)
		log.Info().
			Str("user", restored.user.Identifier()).
			Bool("has_session", restored.sessionID != "").
			Msg("Restored admin session from storage")
	})
}

// Login authenticates against the Auth API and, on success, replaces the
// session. Failures are reported in the result, never returned as errors.
func (s *Store) Login(ctx context.Context, credentials authapi.Credentials) LoginResult {
	resp, err := s.api.Login(ctx, credentials)
	if err != nil {
		log.Warn().Err(err).Str("email", credentials.Email).Msg("Login failed")
		s.metrics.login(resultFailure)
		return LoginResult{Success: false, Error: authapi.Message(err, "Login failed")}
	}

	next := state{
		user:        User(resp.User),
		permissions: permissions.ForAdminSession(resp.Permissions),
		authToken:   resp.AuthToken,
	}
	if next.user == nil {
		next.user = User{}
	}
	if resp.SessionToken != "" {
		next.sessionID = resp.SessionToken
		next.sessionData = Data(resp.Session)
		if next.sessionData == nil {
			next.sessionData = Data{}
		}
	}

	s.lock.Lock()
	s.generation++
	s.persistLogin(next)
	s.state = next
	s.lock.Unlock()

	s.metrics.login(resultSuccess)
	log.Info().
		Str("user", next.user.Identifier()).
		Strs("permissions", next.permissions.Slice()).
		Bool("has_session", next.sessionID != "").
		Msg("Admin login successful")
	s.notify()
	return LoginResult{Success: true}
}

// persistLogin writes every field to both stores. Session keys are removed
// when the login produced no session token. Write failures are logged and
// do not fail the login.
func (s *Store) persistLogin(next state) {
	var errs []error
	if next.authToken != "" {
		errs = append(errs, s.stores.Set(storage.KeyAuthToken, next.authToken))
	} else {
		errs = append(errs, s.stores.Remove(storage.KeyAuthToken))
	}
	errs = append(errs,
		s.stores.Set(storage.KeyUser, encodeUser(next.user)),
		s.stores.Set(storage.KeyPermissions, encodePermissions(next.permissions)),
	)
	if next.sessionID != "" {
		errs = append(errs,
			s.stores.Set(storage.KeySessionID, next.sessionID),
			s.stores.Set(storage.KeySessionData, encodeData(next.sessionData)),
		)
	} else {
		errs = append(errs,
			s.stores.Remove(storage.KeySessionID),
			s.stores.Remove(storage.KeySessionData),
		)
	}
	if err := errors.Join(errs...); err != nil {
		log.Warn().Err(err).Msg("Session persisted partially")
	}
}

// Logout ends the session. The Auth API call is best effort; local state
// and both stores are cleared regardless of its outcome.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		log.Warn().Err(err).Msg("Error during logout")
	}
	s.clear()
	s.metrics.logout()
	log.Info().Msg("Admin logged out")
}

// clear bumps the generation before touching the stores so that an
// in-flight refresh can no longer write back.
func (s *Store) clear() {
	s.lock.Lock()
	s.clearLocked()
	s.lock.Unlock()
	s.notify()
}

// clearIfGeneration clears the session only if no login or logout has
// happened since generation was read. It reports whether it cleared.
func (s *Store) clearIfGeneration(generation uint64) bool {
	s.lock.Lock()
	if s.generation != generation {
		s.lock.Unlock()
		return false
	}
	s.clearLocked()
	s.lock.Unlock()
	s.notify()
	return true
}

func (s *Store) clearLocked() {
	s.generation++
	s.state = state{}
	if err := s.stores.Clear(storage.Keys()...); err != nil {
		log.Warn().Err(err).Msg("Session storage cleared partially")
	}
}

// RefreshSession asks the Auth API for fresh session metadata. It never
// de-authenticates: any failure leaves the current session in place and
// returns false. Concurrent calls share one request, which is bounded by
// refreshTimeout rather than by whichever caller started it.
func (s *Store) RefreshSession(ctx context.Context) bool {
	v, _, _ := s.refresh.Do("refresh", func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refreshTimeout)
		defer cancel()
		return s.refreshSession(shared), nil
	})
	ok, _ := v.(bool)
	return ok
}

func (s *Store) refreshSession(ctx context.Context) bool {
	token, _ := s.stores.Get(storage.KeyAuthToken)
	sessionID, _ := s.stores.Get(storage.KeySessionID)

	s.lock.RLock()
	generation := s.generation
	authenticated := s.state.user != nil
	s.lock.RUnlock()

	if token == "" || sessionID == "" || !authenticated {
		s.metrics.refresh(resultSkipped)
		return false
	}

	resp, err := s.api.Profile(ctx, token)
	if err != nil {
		log.Warn().Err(err).Msg("Session refresh error")
		s.metrics.refresh(resultFailure)
		return false
	}

	nextID := resp.SessionID
	if nextID == "" {
		nextID = sessionID
	}
	nextData := Data(resp.Session)
	if nextData == nil {
		nextData = Data{}
	}

	s.lock.Lock()
	if s.generation != generation || s.state.user == nil {
		s.lock.Unlock()
		log.Debug().Msg("Discarding refresh result for a replaced session")
		s.metrics.refresh(resultDiscarded)
		return false
	}
	s.state.sessionID = nextID
	s.state.sessionData = nextData
	err = errors.Join(
		s.stores.SetPrimary(storage.KeySessionID, nextID),
		s.stores.SetPrimary(storage.KeySessionData, encodeData(nextData)),
	)
	s.lock.Unlock()

	if err != nil {
		log.Warn().Err(err).Msg("Refreshed session persisted partially")
	}
	s.metrics.refresh(resultSuccess)
	log.Debug().Str("session_id", nextID).Msg("Session refreshed")
	s.notify()
	return true
}

// ValidateSession checks the stored auth token against the Auth API. A 401
// or 403 clears the session and returns ErrUnauthorized; other failures
// leave it in place.
func (s *Store) ValidateSession(ctx context.Context) error {
	s.lock.RLock()
	generation := s.generation
	s.lock.RUnlock()

	token, _ := s.stores.Get(storage.KeyAuthToken)
	if token == "" {
		s.metrics.validation(resultRejected)
		return errors.Wrapf(errors.ErrNotAuthenticated, "[ValidateSession]")
	}

	if _, err := s.api.Validate(ctx, token); err != nil {
		if authapi.IsUnauthorized(err) {
			if !s.clearIfGeneration(generation) {
				log.Debug().Msg("Discarding rejection for a replaced session")
				s.metrics.validation(resultDiscarded)
				return errors.Wrapf(err, "[ValidateSession] replaced session")
			}
			log.Warn().Err(err).Msg("Session rejected by auth api, cleared")
			s.metrics.validation(resultRejected)
			return errors.Wrapf(err, "[ValidateSession]")
		}
		s.metrics.validation(resultError)
		return errors.Wrapf(err, "[ValidateSession]")
	}
	s.metrics.validation(resultValid)
	return nil
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Snapshot {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return Snapshot{loading: s.loading, state: s.state.clone()}
}

func (s *Store) Loading() bool {
	return s.Snapshot().Loading()
}

func (s *Store) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated()
}

func (s *Store) IsAdmin() bool {
	return s.Snapshot().IsAdmin()
}

func (s *Store) HasPermission(capability string) bool {
	return s.Snapshot().HasPermission(capability)
}

// Info returns the session information view.
func (s *Store) Info() Info {
	snap := s.Snapshot()
	return buildInfo(snap, snap.state.authToken, s.nowTime())
}

// DebugTokens reports, per persisted key, which stores hold a value.
func (s *Store) DebugTokens() map[string]KeyPresence {
	out := make(map[string]KeyPresence, len(storage.Keys()))
	for _, key := range storage.Keys() {
		out[key] = KeyPresence{
			Primary:  presence(s.stores.Primary(), key),
			Fallback: presence(s.stores.Fallback(), key),
		}
	}
	return out
}

// Subscribe registers fn to receive a Snapshot after every state change.
// fn is called outside the store's lock. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.listenersLock.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.listenersLock.Unlock()

	return func() {
		s.listenersLock.Lock()
		delete(s.listeners, id)
		s.listenersLock.Unlock()
	}
}

func (s *Store) notify() {
	s.listenersLock.Lock()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersLock.Unlock()

	if len(fns) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}
