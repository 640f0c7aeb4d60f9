// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/texrun/internal/core/domain"
)

// Executor runs external tools.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Run starts the invocation and waits for it according to its WaitPolicy.
	//
	// Failures to start the process are reported as a non-zero exit code, never
	// as an error: a build treats every tool failure as a diagnostic.
	Run(ctx context.Context, inv domain.Invocation) domain.ExitStatus
}
