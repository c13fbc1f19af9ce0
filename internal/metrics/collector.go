package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dbguardian/dbguardian/internal/core"
)

// Collector instruments a validation run. It is handed to the orchestrator
// explicitly; nothing in here touches the default registry unless the caller
// passes it.
type Collector struct {
	checksTotal     *prometheus.CounterVec
	checkDuration   *prometheus.HistogramVec
	borrowWait      prometheus.Histogram
	connectFailures *prometheus.CounterVec
	targetScore     *prometheus.GaugeVec
	runScore        prometheus.Gauge
}

func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		checksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbguardian_checks_total",
				Help: "Total number of check outcomes recorded",
			},
			[]string{"target", "check", "status"},
		),
		checkDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dbguardian_check_duration_seconds",
				Help:    "Duration of check executions in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"check"},
		),
		borrowWait: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dbguardian_session_borrow_wait_seconds",
				Help:    "Time spent waiting to borrow a session from a pool",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30},
			},
		),
		connectFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbguardian_connect_failures_total",
				Help: "Connectivity failures after exhausting retries",
			},
			[]string{"target", "reason"},
		),
		targetScore: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dbguardian_target_score",
				Help: "Final 0-100 configuration score per target",
			},
			[]string{"target"},
		),
		runScore: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "dbguardian_run_score",
				Help: "Aggregate 0-100 score of the run",
			},
		),
	}
}

func (c *Collector) RecordOutcome(o core.CheckOutcome) {
	c.checksTotal.WithLabelValues(o.TargetID, o.CheckID, string(o.Status)).Inc()
}

func (c *Collector) ObserveCheckDuration(checkID string, d time.Duration) {
	c.checkDuration.WithLabelValues(checkID).Observe(d.Seconds())
}

func (c *Collector) ObserveBorrowWait(d time.Duration) {
	c.borrowWait.Observe(d.Seconds())
}

func (c *Collector) RecordConnectFailure(targetID, reason string) {
	c.connectFailures.WithLabelValues(targetID, reason).Inc()
}

func (c *Collector) RecordRun(run *core.RunReport) {
	for _, tr := range run.Targets {
		if tr.Score.Valid {
			c.targetScore.WithLabelValues(tr.TargetID).Set(tr.Score.Value)
		}
	}
	if run.Score.Valid {
		c.runScore.Set(run.Score.Value)
	}
}
