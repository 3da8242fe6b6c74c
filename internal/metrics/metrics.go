// Package metrics exposes engine activity as Prometheus metrics.
//
// Recorder subscribes to the engine like any presentation layer and turns
// events into counters and gauges on its own registry.
package metrics

import (
	"context"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/version"
)

// namespace prefixes every metric name.
const namespace = "alarm_clock"

// Recorder converts engine events into Prometheus metrics.
type Recorder struct {
	// registry holds the recorder's metrics plus Go runtime collectors.
	registry *prometheus.Registry
	// ticks counts time samples.
	ticks prometheus.Counter
	// events counts every event by type.
	events *prometheus.CounterVec
	// playbackFailures counts alert sounds that could not be played.
	playbackFailures prometheus.Counter
	// status is 1 for the current alarm status and 0 for the others.
	status *prometheus.GaugeVec
	// use24Hour is 1 in 24-hour mode.
	use24Hour prometheus.Gauge
	// lastSample is the unix time of the latest sample.
	lastSample prometheus.Gauge
}

// NewRecorder creates a recorder with a private registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Total number of wall-clock samples taken by the engine.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total number of engine events by type, ticks excluded.",
		}, []string{"type"}),
		playbackFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_failures_total",
			Help:      "Total number of alert sounds that failed to play.",
		}),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alarm_status",
			Help:      "Current alarm status (1 for the active status).",
		}, []string{"status"}),
		use24Hour: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "use_24_hour",
			Help:      "Whether the clock displays 24-hour time.",
		}),
		lastSample: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_sample_timestamp_seconds",
			Help:      "Unix time of the latest wall-clock sample.",
		}),
	}

	buildInfo := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build version information.",
	}, []string{"version", "commit", "go_version"})
	buildInfo.WithLabelValues(version.Short(), version.Commit, runtime.Version()).Set(1)

	r.registry.MustRegister(
		r.ticks,
		r.events,
		r.playbackFailures,
		r.status,
		r.use24Hour,
		r.lastSample,
		buildInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r.setStatus(domain.StatusDisarmed)

	return r
}

// Registry returns the registry to serve on /metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// OnEvent implements engine.Observer.
func (r *Recorder) OnEvent(_ context.Context, event domain.Event) {
	switch event.Type {
	case domain.EventTick:
		r.ticks.Inc()
	case domain.EventPlaybackFailed:
		r.playbackFailures.Inc()
		r.events.WithLabelValues(string(event.Type)).Inc()
	default:
		r.events.WithLabelValues(string(event.Type)).Inc()
	}

	if event.State == nil {
		return
	}

	r.setStatus(event.State.Status)

	if event.State.Use24Hour {
		r.use24Hour.Set(1)
	} else {
		r.use24Hour.Set(0)
	}

	if !event.State.Timestamp.IsZero() {
		r.lastSample.Set(float64(event.State.Timestamp.Unix()))
	}
}

// setStatus marks one status gauge as active.
func (r *Recorder) setStatus(current domain.Status) {
	for _, status := range []domain.Status{domain.StatusDisarmed, domain.StatusArmed, domain.StatusSounding} {
		value := 0.0
		if status == current {
			value = 1
		}

		r.status.WithLabelValues(string(status)).Set(value)
	}
}
