// Package monitor tracks admin liveness while a session is authenticated.
// It owns two timers: a periodic session refresh and an inactivity
// watchdog. Neither ever logs the user out.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-admin-console/internal/clock"
	"github.com/jrsteele09/go-admin-console/session"
	"github.com/rs/zerolog/log"
)

const (
	DefaultRefreshInterval   = 15 * time.Minute
	DefaultInactivityTimeout = 30 * time.Minute
	DefaultRefreshTimeout    = 10 * time.Second
)

// Refresher is the part of the session store the monitor drives.
type Refresher interface {
	RefreshSession(ctx context.Context) bool
}

type State int

const (
	Idle State = iota
	Armed
)

func (s State) String() string {
	if s == Armed {
		return "Armed"
	}
	return "Idle"
}

type Monitor struct {
	refresher         Refresher
	clock             clock.Clock
	refreshInterval   time.Duration
	inactivityTimeout time.Duration
	refreshTimeout    time.Duration
	metrics           *Metrics

	lock            sync.Mutex
	state           State
	sessionID       string
	epoch           uint64
	refreshTimer    *clock.Timer
	inactivityTimer *clock.Timer
	lastActivity    time.Time
	inactive        bool
	ctx             context.Context
	cancel          context.CancelFunc

	inflight sync.WaitGroup
}

type Option func(*Monitor)

func WithClock(c clock.Clock) Option {
	return func(m *Monitor) {
		m.clock = c
	}
}

func WithRefreshInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.refreshInterval = d
		}
	}
}

func WithInactivityTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.inactivityTimeout = d
		}
	}
}

// WithRefreshTimeout bounds each scheduled refresh call.
func WithRefreshTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.refreshTimeout = d
		}
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(m *Monitor) {
		m.metrics = metrics
	}
}

// New returns an Idle monitor.
func New(refresher Refresher, opts ...Option) *Monitor {
	m := &Monitor{
		refresher:         refresher,
		clock:             clock.Real(),
		refreshInterval:   DefaultRefreshInterval,
		inactivityTimeout: DefaultInactivityTimeout,
		refreshTimeout:    DefaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Observe arms the monitor when snap carries both a user and a session id
// and disarms it otherwise. A changed session id re-arms with fresh timers.
func (m *Monitor) Observe(snap session.Snapshot) {
	wanted := snap.IsAuthenticated() && snap.SessionID() != ""

	m.lock.Lock()
	if !wanted {
		m.disarmLocked()
		m.lock.Unlock()
		return
	}
	if m.state == Armed && m.sessionID == snap.SessionID() {
		m.lock.Unlock()
		return
	}
	m.disarmLocked()
	m.armLocked(snap.SessionID())
	started := m.lastActivity
	m.lock.Unlock()

	log.Info().
		Str("session_id", snap.SessionID()).
		Str("user", snap.User().Identifier()).
		Time("started_at", started).
		Msg("Admin session started")
}

// Touch records activity. It is ignored while Idle.
func (m *Monitor) Touch(ev Event) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.state != Armed {
		return
	}
	m.inactivityTimer.Stop()
	m.lastActivity = m.clock.Now()
	m.inactive = false
	epoch := m.epoch
	m.inactivityTimer = m.clock.AfterFunc(m.inactivityTimeout, func() { m.onInactivity(epoch) })
	log.Trace().Str("event", string(ev)).Msg("Activity")
}

// Stop disarms the monitor and waits for in-flight refreshes, whose
// contexts are cancelled, to return.
func (m *Monitor) Stop() {
	m.lock.Lock()
	m.disarmLocked()
	m.lock.Unlock()
	m.inflight.Wait()
}

func (m *Monitor) State() State {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.state
}

// Inactive reports whether the inactivity deadline passed since the last
// recorded activity.
func (m *Monitor) Inactive() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.inactive
}

// LastActivity returns the time of the last activity, or arming.
func (m *Monitor) LastActivity() time.Time {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.lastActivity
}

func (m *Monitor) armLocked(sessionID string) {
	m.epoch++
	epoch := m.epoch
	m.state = Armed
	m.sessionID = sessionID
	m.inactive = false
	m.lastActivity = m.clock.Now()
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.refreshTimer = m.clock.AfterFunc(m.refreshInterval, func() { m.onRefreshTick(epoch) })
	m.inactivityTimer = m.clock.AfterFunc(m.inactivityTimeout, func() { m.onInactivity(epoch) })
	m.metrics.setArmed(true)
}

// disarmLocked cancels both timers unconditionally. Callbacks already
// running see a stale epoch and do nothing.
func (m *Monitor) disarmLocked() {
	if m.state == Idle {
		return
	}
	m.refreshTimer.Stop()
	m.inactivityTimer.Stop()
	m.refreshTimer, m.inactivityTimer = nil, nil
	m.cancel()
	m.epoch++
	m.state = Idle
	m.sessionID = ""
	m.inactive = false
	m.metrics.setArmed(false)
}

func (m *Monitor) onRefreshTick(epoch uint64) {
	m.lock.Lock()
	if m.epoch != epoch || m.state != Armed {
		m.lock.Unlock()
		return
	}
	m.refreshTimer = m.clock.AfterFunc(m.refreshInterval, func() { m.onRefreshTick(epoch) })
	ctx := m.ctx
	m.inflight.Add(1)
	m.lock.Unlock()

	go func() {
		defer m.inflight.Done()
		ctx, cancel := context.WithTimeout(ctx, m.refreshTimeout)
		defer cancel()

		ok := m.refresher.RefreshSession(ctx)
		m.metrics.refreshed(ok)
		if ok {
			log.Debug().Msg("Session refreshed successfully")
			return
		}
		log.Warn().Msg("Session refresh failed")
	}()
}

// onInactivity only records and logs: the Auth API remains the authority
// on session validity.
func (m *Monitor) onInactivity(epoch uint64) {
	m.lock.Lock()
	if m.epoch != epoch || m.state != Armed {
		m.lock.Unlock()
		return
	}
	m.inactive = true
	m.inactivityTimer = nil
	last := m.lastActivity
	sessionID := m.sessionID
	m.lock.Unlock()

	m.metrics.inactive()
	log.Warn().
		Str("session_id", sessionID).
		Time("last_activity", last).
		Msg("Admin session inactive")
}
