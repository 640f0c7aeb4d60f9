// Package metrics records build statistics with Prometheus collectors and
// exports them in the node exporter textfile format.
package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/texrun/internal/core/domain"
	"go.trai.ch/texrun/internal/core/ports"
	"go.trai.ch/zerr"
)

const namespace = "texrun"

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeKilled   = "killed"
	OutcomeTimeout  = "timeout"
	OutcomeUpToDate = "up_to_date"
)

var _ ports.Metrics = (*Recorder)(nil)

// Recorder implements ports.Metrics using Prometheus metrics.
type Recorder struct {
	reg *prom.Registry

	invocations        *prom.CounterVec
	invocationDuration *prom.HistogramVec
	builds             *prom.CounterVec
	buildDuration      prom.Histogram
	compilerRuns       prom.Histogram
	diagnostics        *prom.CounterVec
}

// NewRecorder constructs the collectors and registers them with reg. A nil
// registry is replaced by a fresh one.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		reg: reg,
		invocations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_total",
			Help:      "External tool invocations by tool and outcome",
		}, []string{"tool", "outcome"}),
		invocationDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "invocation_duration_seconds",
			Help:      "Duration of external tool invocations",
			Buckets:   prom.DefBuckets,
		}, []string{"tool"}),
		builds: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Finished compilations by outcome",
		}, []string{"outcome"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total compilation duration",
			Buckets:   prom.DefBuckets,
		}),
		compilerRuns: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "compiler_runs",
			Help:      "Compiler passes per compilation",
			Buckets:   prom.LinearBuckets(0, 1, domain.DefaultMaxRuns+1),
		}),
		diagnostics: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Error and undefined reference records reported by compilations",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		r.invocations,
		r.invocationDuration,
		r.builds,
		r.buildDuration,
		r.compilerRuns,
		r.diagnostics,
	)
	return r
}

// Registry returns the registry holding the collectors.
func (r *Recorder) Registry() *prom.Registry {
	return r.reg
}

// RecordInvocation counts one external tool run.
func (r *Recorder) RecordInvocation(tool string, status domain.ExitStatus, duration time.Duration) {
	r.invocations.WithLabelValues(tool, invocationOutcome(status)).Inc()
	r.invocationDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordBuild counts one finished compilation.
func (r *Recorder) RecordBuild(result domain.Result, duration time.Duration) {
	r.builds.WithLabelValues(BuildOutcome(result.Signals)).Inc()
	r.buildDuration.Observe(duration.Seconds())
	r.compilerRuns.Observe(float64(result.Runs))
	r.diagnostics.WithLabelValues("error").Add(float64(len(result.Errors)))
	r.diagnostics.WithLabelValues("reference").Add(float64(len(result.Refs)))
}

// WriteTextfile writes the current values to path in the text exposition
// format, replacing the file atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, r.reg); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write metrics"), "path", path)
	}
	return nil
}

func invocationOutcome(status domain.ExitStatus) string {
	switch {
	case status.Killed:
		return OutcomeKilled
	case status.TimedOut:
		return OutcomeTimeout
	case status.Code != 0:
		return OutcomeFailed
	default:
		return OutcomeSuccess
	}
}

// BuildOutcome maps the signals of a result to its outcome label.
func BuildOutcome(s domain.Signal) string {
	switch {
	case s.Has(domain.Killed):
		return OutcomeKilled
	case s.Has(domain.Timeout):
		return OutcomeTimeout
	case s.Unsuccessful():
		return OutcomeFailed
	case s.Has(domain.NoChange):
		return OutcomeUpToDate
	default:
		return OutcomeSuccess
	}
}
