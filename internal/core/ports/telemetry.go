package ports

import (
	"context"
	"io"

	"go.trai.ch/texrun/internal/core/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Telemetry records the tool invocations of a build.
type Telemetry interface {
	// Record starts a new vertex and returns a context carrying it.
	Record(ctx context.Context, name string, opts ...VertexOption) (context.Context, Vertex)
	// Close flushes the recording.
	Close() error
}

// Vertex is one recorded unit of work.
type Vertex interface {
	// Stdout returns a writer capturing the standard output of the work.
	Stdout() io.Writer
	// Stderr returns a writer capturing the error output of the work.
	Stderr() io.Writer
	// Log records a message for this vertex.
	Log(level domain.LogLevel, msg string)
	// Complete marks the vertex as finished.
	Complete(err error)
	// Cached marks the vertex as skipped because nothing changed.
	Cached()
}

// VertexConfig holds configuration for a starting vertex.
type VertexConfig struct {
	// Group names the build the vertex belongs to.
	Group string
}

// VertexOption is a functional option for configuring a vertex.
type VertexOption func(*VertexConfig)

// WithGroup sets the group of a vertex.
func WithGroup(group string) VertexOption {
	return func(c *VertexConfig) {
		c.Group = group
	}
}

type vertexKey struct{}

// ContextWithVertex returns a context carrying v.
func ContextWithVertex(ctx context.Context, v Vertex) context.Context {
	return context.WithValue(ctx, vertexKey{}, v)
}

// VertexFromContext returns the vertex carried by ctx, or nil.
func VertexFromContext(ctx context.Context) Vertex {
	v, _ := ctx.Value(vertexKey{}).(Vertex)
	return v
}
