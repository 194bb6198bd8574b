// Package metrics records batch-run metrics for the scoring engine and
// pushes them to a Prometheus Pushgateway when one is configured.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Evaluation results.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

// Recorder holds the collectors of one command invocation.
type Recorder struct {
	registry *prometheus.Registry

	// vehiclesEvaluated counts vehicles by operation and result
	vehiclesEvaluated *prometheus.CounterVec

	// evaluationDuration tracks per-vehicle evaluation latency
	evaluationDuration *prometheus.HistogramVec

	// alertTransitions counts alerts opened and resolved
	alertTransitions *prometheus.CounterVec

	// riskScore tracks the distribution of computed risk scores
	riskScore prometheus.Histogram

	// lastRun is the unix time the batch finished
	lastRun prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		vehiclesEvaluated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetrisk_vehicles_evaluated_total",
			Help: "Vehicles evaluated by operation and result",
		}, []string{"operation", "result"}),
		evaluationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fleetrisk_vehicle_evaluation_duration_seconds",
			Help:    "Per-vehicle evaluation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}, []string{"operation"}),
		alertTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetrisk_alert_transitions_total",
			Help: "Risk alerts opened or resolved by type",
		}, []string{"alert_type", "action"}),
		riskScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fleetrisk_risk_score",
			Help:    "Distribution of computed vehicle risk scores",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleetrisk_last_run_timestamp_seconds",
			Help: "Unix time the last batch finished",
		}),
	}
	r.registry.MustRegister(r.vehiclesEvaluated, r.evaluationDuration, r.alertTransitions, r.riskScore, r.lastRun)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveVehicle records one vehicle evaluation.
func (r *Recorder) ObserveVehicle(operation string, took time.Duration, err error) {
	result := ResultOK
	if err != nil {
		result = ResultFailed
	}
	r.vehiclesEvaluated.WithLabelValues(operation, result).Inc()
	r.evaluationDuration.WithLabelValues(operation).Observe(took.Seconds())
}

// ObserveRiskScore records a computed risk score.
func (r *Recorder) ObserveRiskScore(score float64) {
	r.riskScore.Observe(score)
}

// ObserveAlert records an alert transition.
func (r *Recorder) ObserveAlert(alertType, action string) {
	r.alertTransitions.WithLabelValues(alertType, action).Inc()
}

// Finish stamps the end of the batch.
func (r *Recorder) Finish(at time.Time) {
	r.lastRun.Set(float64(at.Unix()))
}

// Push sends the collected metrics to the Pushgateway at url under job.
// It does nothing when url is empty.
func (r *Recorder) Push(url, job string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(r.registry).Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
