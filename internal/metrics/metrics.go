// Package metrics exposes journal activity as Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "trenerka"

// Export outcomes
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder is the set of collectors the journal service reports to.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	sessionsAdded prometheus.Counter
	draftUpdates  *prometheus.CounterVec
	exports       *prometheus.CounterVec
	storeSize     prometheus.Gauge
}

// New registers the journal collectors plus the Go runtime and process
// collectors on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sessionsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_added_total",
			Help:      "Sessions appended to the journal.",
		}),
		draftUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draft_updates_total",
			Help:      "Draft field updates by field and result.",
		}, []string{"field", "outcome"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Journal exports by format and outcome.",
		}, []string{"format", "outcome"}),
		storeSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_stored",
			Help:      "Sessions currently held in the journal.",
		}),
	}

	r.registry.MustRegister(
		r.sessionsAdded,
		r.draftUpdates,
		r.exports,
		r.storeSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) SessionAdded(total int) {
	if r == nil {
		return
	}
	r.sessionsAdded.Inc()
	r.storeSize.Set(float64(total))
}

func (r *Recorder) DraftUpdated(field string, err error) {
	if r == nil {
		return
	}
	r.draftUpdates.WithLabelValues(field, outcome(err)).Inc()
}

func (r *Recorder) Exported(format string, err error) {
	if r == nil {
		return
	}
	r.exports.WithLabelValues(format, outcome(err)).Inc()
}

// CounterFunc exposes a monotonically increasing value read from fn at
// scrape time, such as a middleware's internal counter.
func (r *Recorder) CounterFunc(name, help string, fn func() float64) {
	if r == nil {
		return
	}
	r.registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

// GaugeFunc exposes a value read from fn at scrape time.
func (r *Recorder) GaugeFunc(name, help string, fn func() float64) {
	if r == nil {
		return
	}
	r.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests and additional collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
