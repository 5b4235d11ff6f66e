// Package metrics exposes local search progress as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/copyleftdev/IBMOLS/internal/optimization/ibmols"
)

const namespace = "ibmols"

// Collector implements ibmols.Observer and tracks search jobs.
// It is safe for concurrent use by several searches.
type Collector struct {
	steps       *prometheus.CounterVec
	sweeps      prometheus.Counter
	archiveSize prometheus.Gauge
	searches    *prometheus.CounterVec
	running     prometheus.Gauge
}

var _ ibmols.Observer = (*Collector)(nil)

// New creates a collector and registers it on reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Evaluated moves by outcome.",
		}, []string{"outcome"}),
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Completed passes over a population.",
		}),
		archiveSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "archive_size",
			Help:      "Local archive size after the most recent sweep of any search.",
		}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Finished searches by final status.",
		}, []string{"status"}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "searches_running",
			Help:      "Searches currently running.",
		}),
	}

	for _, col := range []prometheus.Collector{c.steps, c.sweeps, c.archiveSize, c.searches, c.running} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ObserveStep counts one step.
func (c *Collector) ObserveStep(outcome ibmols.Outcome) {
	c.steps.WithLabelValues(outcome.String()).Inc()
}

// ObserveSweep counts one sweep and records the archive size.
func (c *Collector) ObserveSweep(archiveSize int) {
	c.sweeps.Inc()
	c.archiveSize.Set(float64(archiveSize))
}

// SearchStarted marks a search as running.
func (c *Collector) SearchStarted() {
	c.running.Inc()
}

// SearchFinished marks a running search as finished with status.
func (c *Collector) SearchFinished(status string) {
	c.running.Dec()
	c.searches.WithLabelValues(status).Inc()
}
