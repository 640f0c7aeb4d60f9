// Package progrock provides the Progrock implementation of the telemetry adapter.
package progrock

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/texrun/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Telemetry = (*Recorder)(nil)

// Recorder implements the ports.Telemetry interface using the progrock library.
// Status updates go to every attached writer; with none attached they are
// dropped.
type Recorder struct {
	sinks *sinks
	rec   *progrock.Recorder
	seq   atomic.Uint64
}

// New creates a new Recorder with no writer attached. Use Journal to capture
// the updates of a build.
func New() *Recorder {
	return NewRecorder(nil)
}

// NewRecorder creates a new Recorder that writes to w for its whole lifetime.
func NewRecorder(w progrock.Writer) *Recorder {
	s := &sinks{}
	if w != nil {
		s.attach(w)
	}
	return &Recorder{
		sinks: s,
		rec:   progrock.NewRecorder(s),
	}
}

// Journal writes every status update recorded from now on to path as JSON
// lines, until the returned stop function is called.
func (r *Recorder) Journal(path string) (func() error, error) {
	w, err := progrock.CreateJournal(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create progress journal"), "path", path)
	}
	r.sinks.attach(w)

	var once sync.Once
	return func() error {
		var err error
		once.Do(func() { err = r.sinks.detach(w) })
		return err
	}, nil
}

// Record starts recording a new vertex. A tool runs several times in one
// build, so every vertex gets its own digest.
func (r *Recorder) Record(ctx context.Context, name string, opts ...ports.VertexOption) (context.Context, ports.Vertex) {
	var cfg ports.VertexConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	rec := r.rec
	if cfg.Group != "" {
		rec = rec.WithGroup(cfg.Group)
	}

	d := digest.FromString(cfg.Group + "/" + name + "#" + strconv.FormatUint(r.seq.Add(1), 10))
	vertex := &Vertex{vertex: rec.Vertex(d, name)}
	return ports.ContextWithVertex(ctx, vertex), vertex
}

// Close flushes and closes every attached writer.
func (r *Recorder) Close() error {
	return r.sinks.Close()
}

// sinks fans status updates out to a set of writers that can change while
// recording.
type sinks struct {
	mu      sync.Mutex
	writers []progrock.Writer
}

func (s *sinks) attach(w progrock.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writers = append(s.writers, w)
}

func (s *sinks) detach(w progrock.Writer) error {
	s.mu.Lock()
	i := slices.Index(s.writers, w)
	if i >= 0 {
		s.writers = slices.Delete(s.writers, i, i+1)
	}
	s.mu.Unlock()

	if i < 0 {
		return nil
	}
	return w.Close()
}

func (s *sinks) WriteStatus(update *progrock.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, w := range s.writers {
		if err := w.WriteStatus(update); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *sinks) Close() error {
	s.mu.Lock()
	writers := s.writers
	s.writers = nil
	s.mu.Unlock()

	var errs []error
	for _, w := range writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
