package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts monitor activity. A nil *Metrics records nothing.
type Metrics struct {
	armed      prometheus.Gauge
	inactivity prometheus.Counter
	refreshes  *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		armed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "admin_console",
			Subsystem: "monitor",
			Name:      "armed",
			Help:      "1 while the activity monitor is tracking a session.",
		}),
		inactivity: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "admin_console",
			Subsystem: "monitor",
			Name:      "inactivity_total",
			Help:      "Inactivity deadlines reached.",
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "admin_console",
			Subsystem: "monitor",
			Name:      "refresh_ticks_total",
			Help:      "Scheduled session refreshes by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.armed, m.inactivity, m.refreshes)
	}
	return m
}

func (m *Metrics) setArmed(armed bool) {
	if m == nil {
		return
	}
	if armed {
		m.armed.Set(1)
		return
	}
	m.armed.Set(0)
}

func (m *Metrics) inactive() {
	if m != nil {
		m.inactivity.Inc()
	}
}

func (m *Metrics) refreshed(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.refreshes.WithLabelValues("ok").Inc()
		return
	}
	m.refreshes.WithLabelValues("failed").Inc()
}
