package progrock

import (
	"fmt"
	"io"

	"github.com/vito/progrock"
	"go.trai.ch/texrun/internal/core/domain"
)

// Vertex implements ports.Vertex wrapping *progrock.VertexRecorder. One
// vertex records one tool invocation.
type Vertex struct {
	vertex *progrock.VertexRecorder
}

// Stdout returns a writer capturing the tool's standard output.
func (v *Vertex) Stdout() io.Writer {
	return v.vertex.Stdout()
}

// Stderr returns a writer capturing the tool's error output.
func (v *Vertex) Stderr() io.Writer {
	return v.vertex.Stderr()
}

// Log records a message on the vertex. Warnings and errors go to the error
// stream.
func (v *Vertex) Log(level domain.LogLevel, msg string) {
	w := v.vertex.Stdout()
	if level >= domain.LogLevelWarn {
		w = v.vertex.Stderr()
	}
	_, _ = fmt.Fprintf(w, "[%s] %s\n", level, msg)
}

// Complete marks the invocation as finished, failed when err is non-nil.
func (v *Vertex) Complete(err error) {
	v.vertex.Done(err)
}

// Cached marks a step that was skipped because its inputs did not change.
func (v *Vertex) Cached() {
	v.vertex.Cached()
}
