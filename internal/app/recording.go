package app

import (
	"context"
	"time"

	"go.trai.ch/texrun/internal/core/domain"
	"go.trai.ch/texrun/internal/core/ports"
	"go.trai.ch/zerr"
)

var errToolFailed = zerr.New("tool failed")

// recordingExecutor records every invocation as a telemetry vertex and in
// the build metrics.
type recordingExecutor struct {
	next      ports.Executor
	telemetry ports.Telemetry
	metrics   ports.Metrics
	group     string
}

func (e *recordingExecutor) Run(ctx context.Context, inv domain.Invocation) domain.ExitStatus {
	ctx, vertex := e.telemetry.Record(ctx, inv.Name, ports.WithGroup(e.group))

	start := time.Now()
	status := e.next.Run(ctx, inv)
	e.metrics.RecordInvocation(inv.Name, status, time.Since(start))

	if status.OK() {
		vertex.Complete(nil)
		return status
	}
	err := zerr.With(errToolFailed, "exit_code", status.Code)
	if status.Aborted() {
		err = zerr.With(err, "signal", status.Signal().String())
	}
	vertex.Complete(err)
	return status
}
