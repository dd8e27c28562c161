// Package obs holds the process logger and the engine's Prometheus metrics.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Commit outcome labels.
const (
	StatusOK       = "ok"
	StatusReplayed = "replayed"
	StatusError    = "error"
)

// Metrics counts the engine's writes.
type Metrics struct {
	Commits     *prometheus.CounterVec
	LegsWritten *prometheus.CounterVec
	Rollbacks   *prometheus.CounterVec
	BuildInfo   *prometheus.GaugeVec
}

// NewMetrics creates the engine metrics and registers them on reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equity_commits_total",
				Help: "Committed economic events by kind and outcome.",
			},
			[]string{"kind", "status"},
		),
		LegsWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equity_legs_written_total",
				Help: "Transactions written by kind.",
			},
			[]string{"kind"},
		),
		Rollbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equity_rollbacks_total",
				Help: "Compensating writes issued after a partial store failure.",
			},
			[]string{"op"},
		),
		BuildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "equity_build_info",
				Help: "Equity engine build information.",
			},
			[]string{"version", "commit"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Commits, m.LegsWritten, m.Rollbacks, m.BuildInfo)
	}
	return m
}

// SetBuildInfo sets equity_build_info{version,commit} to 1.
func (m *Metrics) SetBuildInfo(version, commit string) {
	m.BuildInfo.WithLabelValues(version, commit).Set(1)
}

// Commit records one commit attempt and, on success, the legs it wrote.
func (m *Metrics) Commit(kind, status string, legs int) {
	m.Commits.WithLabelValues(kind, status).Inc()
	if status == StatusOK && legs > 0 {
		m.LegsWritten.WithLabelValues(kind).Add(float64(legs))
	}
}

// Rollback records compensating writes for op.
func (m *Metrics) Rollback(op string) {
	m.Rollbacks.WithLabelValues(op).Inc()
}
