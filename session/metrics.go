package session

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts session lifecycle outcomes. A nil *Metrics records nothing.
type Metrics struct {
	logins      *prometheus.CounterVec
	logouts     prometheus.Counter
	refreshes   *prometheus.CounterVec
	restores    *prometheus.CounterVec
	validations *prometheus.CounterVec
}

// NewMetrics creates the session collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "admin_console",
			Subsystem: "session",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "admin_console",
			Subsystem: "session",
			Name:      "logouts_total",
			Help:      "Completed logouts.",
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "admin_console",
			Subsystem: "session",
			Name:      "refreshes_total",
			Help:      "Session refresh attempts by result.",
		}, []string{"result"}),
		restores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "admin_console",
			Subsystem: "session",
			Name:      "restores_total",
			Help:      "Startup restores by result.",
		}, []string{"result"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "admin_console",
			Subsystem: "session",
			Name:      "validations_total",
			Help:      "Explicit session validations by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.logins, m.logouts, m.refreshes, m.restores, m.validations)
	}
	return m
}

func (m *Metrics) login(result string) {
	if m != nil {
		m.logins.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) logout() {
	if m != nil {
		m.logouts.Inc()
	}
}

func (m *Metrics) refresh(result string) {
	if m != nil {
		m.refreshes.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) restore(result string) {
	if m != nil {
		m.restores.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) validation(result string) {
	if m != nil {
		m.validations.WithLabelValues(result).Inc()
	}
}

const (
	resultSuccess   = "success"
	resultFailure   = "failure"
	resultSkipped   = "skipped"
	resultDiscarded = "discarded"
	resultRestored  = "restored"
	resultEmpty     = "empty"
	resultMalformed = "malformed"
	resultValid     = "valid"
	resultRejected  = "rejected"
	resultError     = "error"
)
