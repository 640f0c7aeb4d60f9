package ports

import (
	"time"

	"go.trai.ch/texrun/internal/core/domain"
)

// Metrics records build statistics.
//
//go:generate go run go.uber.org/mock/mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	// RecordInvocation counts one external tool run.
	RecordInvocation(tool string, status domain.ExitStatus, duration time.Duration)
	// RecordBuild counts one finished compilation.
	RecordBuild(result domain.Result, duration time.Duration)
}
