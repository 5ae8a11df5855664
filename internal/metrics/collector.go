// package metrics exposes dashboard and simulator counters in the Prometheus text format
package metrics

import (
	"net/http"
	"time"

	"github.com/desertthunder/lmx/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lmx"

// Collector collects and exposes metrics on its own registry.
type Collector struct {
	registry  *prometheus.Registry
	polls     *prometheus.CounterVec
	actions   *prometheus.CounterVec
	progress  prometheus.Gauge
	state     *prometheus.GaugeVec
	records   prometheus.Counter
	batchTime prometheus.Histogram
}

// New creates a collector with every metric registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_polls_total",
				Help:      "Status requests issued, by result",
			},
			[]string{"result"},
		),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "control_requests_total",
				Help:      "Start/pause/resume requests issued, by action and result",
			},
			[]string{"action", "result"},
		),
		progress: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "migration_progress",
				Help:      "Last reported migration progress",
			},
		),
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "migration_state",
				Help:      "1 for the last reported migration state, 0 otherwise",
			},
			[]string{"state"},
		),
		records: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "simulator_records_total",
				Help:      "Records processed by the simulator",
			},
		),
		batchTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "simulator_batch_duration_seconds",
				Help:      "Time taken to process a simulator batch",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	c.registry.MustRegister(c.polls, c.actions, c.progress, c.state, c.records, c.batchTime)
	return c
}

// ObservePoll records a status request outcome and, on success, the reported status.
func (c *Collector) ObservePoll(status models.MigrationStatus, err error) {
	if err != nil {
		c.polls.WithLabelValues("error").Inc()
		return
	}
	c.polls.WithLabelValues("ok").Inc()
	c.SetStatus(status)
}

// ObserveAction records a control request outcome.
func (c *Collector) ObserveAction(control models.Control, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.actions.WithLabelValues(control.String(), result).Inc()
}

// SetStatus updates the progress and state gauges.
func (c *Collector) SetStatus(status models.MigrationStatus) {
	c.progress.Set(status.Progress)
	for _, s := range models.States {
		c.state.WithLabelValues(string(s)).Set(0)
	}
	c.state.WithLabelValues(string(status.State)).Set(1)
}

// ObserveBatch records a completed simulator batch.
func (c *Collector) ObserveBatch(records int, d time.Duration) {
	c.records.Add(float64(records))
	c.batchTime.Observe(d.Seconds())
}

// Handler serves the registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
