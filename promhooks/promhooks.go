// Package promhooks exports orbital.Hooks events as Prometheus metrics.
package promhooks

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/orbital"
)

// Hooks holds all Prometheus metrics for one coordinator.
type Hooks struct {
	Switches      *prometheus.CounterVec
	DrainSeconds  prometheus.Histogram
	DrainTimeouts prometheus.Counter
	CounterSkews  *prometheus.CounterVec
	ReleaseErrors *prometheus.CounterVec
	LiveOrbit     prometheus.Gauge
}

var _ orbital.Hooks = (*Hooks)(nil)

// New creates and registers the metrics with reg. namespace prefixes every metric name.
func New(reg prometheus.Registerer, namespace string) *Hooks {
	h := &Hooks{
		Switches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orbital_switches_total",
			Help:      "Switch attempts by result (completed, contended, failed).",
		}, []string{"result"}),
		DrainSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "orbital_drain_seconds",
			Help:      "Time spent draining the retiring orbit before a completed switch.",
			Buckets:   []float64{0, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		DrainTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orbital_drain_timeouts_total",
			Help:      "Switches that flipped with operations still in flight.",
		}),
		CounterSkews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orbital_counter_skew_total",
			Help:      "Observations of an operating counter below zero.",
		}, []string{"orbit"}),
		ReleaseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orbital_release_errors_total",
			Help:      "Failed releases by kind (lock, track).",
		}, []string{"kind"}),
		LiveOrbit: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "orbital_live_orbit",
			Help:      "Orbit made live by the last switch seen by this process.",
		}),
	}
	reg.MustRegister(h.Switches, h.DrainSeconds, h.DrainTimeouts, h.CounterSkews, h.ReleaseErrors, h.LiveOrbit)
	return h
}

func (h *Hooks) SwitchContended() { h.Switches.WithLabelValues("contended").Inc() }

func (h *Hooks) DrainTimedOut(orbital.Orbit, int64, time.Duration) { h.DrainTimeouts.Inc() }

func (h *Hooks) CounterSkew(o orbital.Orbit, _ int64) {
	h.CounterSkews.WithLabelValues(o.String()).Inc()
}

func (h *Hooks) SwitchCompleted(_, to orbital.Orbit, drained time.Duration) {
	h.Switches.WithLabelValues("completed").Inc()
	h.DrainSeconds.Observe(drained.Seconds())
	h.LiveOrbit.Set(float64(to))
}

func (h *Hooks) SwitchFailed(string, error) { h.Switches.WithLabelValues("failed").Inc() }

func (h *Hooks) LockReleaseError(error) { h.ReleaseErrors.WithLabelValues("lock").Inc() }

func (h *Hooks) TrackReleaseError(orbital.Orbit, error) {
	h.ReleaseErrors.WithLabelValues("track").Inc()
}
