// Package metrics records wizard step transitions and conformance suite
// calls as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/andreagrandi/conformance-wizard/internal/wizard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements wizard.Observer on a dedicated registry.
type Recorder struct {
	registry *prometheus.Registry

	StepTransitions *prometheus.CounterVec
	RemoteCalls     *prometheus.CounterVec
	CurrentStep     prometheus.Gauge
}

var _ wizard.Observer = (*Recorder)(nil)

// New creates a Recorder with all metrics registered on a fresh registry.
func New() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	r := &Recorder{
		registry: registry,
		StepTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conformance_wizard_step_transitions_total",
				Help: "Total number of wizard step transitions",
			},
			[]string{"from", "to"},
		),
		RemoteCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conformance_wizard_remote_calls_total",
				Help: "Total number of conformance suite calls by outcome",
			},
			[]string{"operation", "outcome"},
		),
		CurrentStep: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "conformance_wizard_step",
				Help: "Current wizard step number",
			},
		),
	}

	r.CurrentStep.Set(float64(wizard.StepOne.Number()))

	return r
}

// StepChanged records a transition and updates the current step gauge.
func (r *Recorder) StepChanged(from wizard.Step, to wizard.Step) {
	r.StepTransitions.WithLabelValues(from.String(), to.String()).Inc()
	r.CurrentStep.Set(float64(to.Number()))
}

// RemoteCall records the outcome of a suite call.
func (r *Recorder) RemoteCall(operation wizard.Operation, outcome wizard.Outcome) {
	r.RemoteCalls.WithLabelValues(string(operation), string(outcome)).Inc()
}

// Registry returns the registry backing the recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns the Prometheus metrics HTTP handler for this recorder.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
