// Package app implements the application layer for texrun.
package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/texrun/internal/adapters/watcher" //nolint:depguard // debouncing is part of the watch use case
	"go.trai.ch/texrun/internal/core/domain"
	"go.trai.ch/texrun/internal/core/ports"
	"go.trai.ch/texrun/internal/engine/driver"
	"go.trai.ch/zerr"
)

// LabelScanner indexes the labels of the document sources below a directory.
type LabelScanner interface {
	Index(dir string) ports.LabelIndex
}

// textfileWriter is implemented by metrics recorders that can export to the
// node exporter textfile format.
type textfileWriter interface {
	WriteTextfile(path string) error
}

// journaler is implemented by telemetry recorders that can write the progress
// of a build to a file.
type journaler interface {
	Journal(path string) (stop func() error, err error)
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	executor     ports.Executor
	logger       ports.Logger
	checksums    ports.Checksummer
	finder       ports.FileFinder
	labels       LabelScanner
	telemetry    ports.Telemetry
	metrics      ports.Metrics
	watcher      ports.Watcher

	out            io.Writer
	newID          func() string
	debounceWindow time.Duration
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	executor ports.Executor,
	log ports.Logger,
	checksums ports.Checksummer,
	finder ports.FileFinder,
	labels LabelScanner,
	telemetry ports.Telemetry,
	metrics ports.Metrics,
	fileWatcher ports.Watcher,
) *App {
	return &App{
		configLoader:   loader,
		executor:       executor,
		logger:         log,
		checksums:      checksums,
		finder:         finder,
		labels:         labels,
		telemetry:      telemetry,
		metrics:        metrics,
		watcher:        fileWatcher,
		out:            os.Stdout,
		newID:          uuid.NewString,
		debounceWindow: watcher.DefaultDebounceWindow,
	}
}

// WithOutput sets the writer the build report is printed to.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// WithIDGenerator replaces the generator of build ids. Used by tests.
func (a *App) WithIDGenerator(fn func() string) *App {
	a.newID = fn
	return a
}

// WithDebounceWindow sets how long the watch loop waits for more changes
// before rebuilding.
func (a *App) WithDebounceWindow(d time.Duration) *App {
	a.debounceWindow = d
	return a
}

// BuildOptions configure a single build.
type BuildOptions struct {
	// Overrides are applied in order to the loaded settings.
	Overrides []func(*domain.Settings)
	// MetricsFile receives the build metrics in textfile format when set.
	MetricsFile string
	// JournalFile receives the progress of the build as JSON lines when set.
	JournalFile string
	// Quiet suppresses the report.
	Quiet bool
}

// Build compiles master until it converges and prints a report. The returned
// error covers problems setting the build up; the outcome of the compilation
// itself is in the result (see OutcomeError).
func (a *App) Build(ctx context.Context, master string, opts BuildOptions) (domain.Result, error) {
	d, err := a.newDriver(master, opts.Overrides)
	if err != nil {
		return domain.Result{}, err
	}

	buildID := a.newID()
	a.logger.Info("building", "build_id", buildID, "file", d.Master())

	stopJournal := a.startJournal(opts.JournalFile)
	start := time.Now()
	result := d.Run(ctx)
	elapsed := time.Since(start)
	if err := stopJournal(); err != nil {
		a.logger.Error(zerr.With(zerr.Wrap(err, "failed to close progress journal"), "path", opts.JournalFile))
	}

	a.metrics.RecordBuild(result, elapsed)
	a.logger.Debug("build finished",
		"build_id", buildID,
		"runs", result.Runs,
		"signals", result.Signals.String(),
		"duration", elapsed.Round(time.Millisecond),
	)

	if !opts.Quiet {
		if err := NewReport(a.out).Print(d.Master(), result); err != nil {
			a.logger.Error(zerr.Wrap(err, "failed to print report"))
		}
	}

	if opts.MetricsFile != "" {
		a.writeMetrics(opts.MetricsFile)
	}

	return result, nil
}

// Clean removes the auxiliary files and the output of master.
func (a *App) Clean(master string, overrides ...func(*domain.Settings)) error {
	overrides = append(overrides, func(s *domain.Settings) { s.CleanStart = false })
	d, err := a.newDriver(master, overrides)
	if err != nil {
		return err
	}
	d.RemoveAuxiliaryFiles()
	a.logger.Info("removed auxiliary files", "file", d.Master())
	return nil
}

// Watch builds master, then rebuilds it whenever a source below its
// directory changes, until ctx is done. Failed builds are reported and
// watching continues.
func (a *App) Watch(ctx context.Context, master string, opts BuildOptions) error {
	if _, err := a.Build(ctx, master, opts); err != nil {
		return err
	}

	dir, err := documentDir(master)
	if err != nil {
		return err
	}
	if err := a.watcher.Start(ctx, dir); err != nil {
		return zerr.Wrap(err, "failed to start watcher")
	}
	defer func() {
		if err := a.watcher.Stop(); err != nil {
			a.logger.Error(zerr.Wrap(err, "failed to stop watcher"))
		}
	}()

	// One pending rebuild is enough: the checksum ledger finds every change.
	trigger := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(a.debounceWindow, func(paths []string) {
		select {
		case trigger <- paths:
		default:
		}
	})
	go func() {
		for event := range a.watcher.Events() {
			debouncer.Add(event.Path)
		}
	}()

	a.logger.Info("watching for changes", "dir", dir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-trigger:
			a.logger.Info("change detected", "files", paths)
			if _, err := a.Build(ctx, master, opts); err != nil {
				a.logger.Error(err)
			}
		}
	}
}

// OutcomeError converts a failed or aborted result into an error wrapping
// domain.ErrBuildFailed or domain.ErrBuildAborted.
func OutcomeError(result domain.Result) error {
	switch {
	case result.Signals.Aborted():
		return zerr.With(zerr.Wrap(domain.ErrBuildAborted, "compilation interrupted"), "signals", result.Signals.String())
	case result.Signals.Unsuccessful():
		return zerr.With(zerr.Wrap(domain.ErrBuildFailed, "compilation failed"), "signals", result.Signals.String())
	default:
		return nil
	}
}

func (a *App) newDriver(master string, overrides []func(*domain.Settings)) (*driver.Driver, error) {
	if master == "" {
		return nil, domain.ErrNoInputFile
	}
	dir, err := documentDir(master)
	if err != nil {
		return nil, err
	}

	settings, err := a.configLoader.Load(dir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	for _, override := range overrides {
		override(&settings)
	}

	return driver.New(
		driver.Params{Master: master, Settings: settings},
		driver.Deps{
			Exec: &recordingExecutor{
				next:      a.executor,
				telemetry: a.telemetry,
				metrics:   a.metrics,
				group:     filepath.Base(master),
			},
			Sums:   a.checksums,
			Finder: a.finder,
			Labels: a.labels.Index(dir),
			Logger: a.logger,
		},
	)
}

func (a *App) writeMetrics(path string) {
	w, ok := a.metrics.(textfileWriter)
	if !ok {
		a.logger.Warn("metrics export is not supported", "path", path)
		return
	}
	if err := w.WriteTextfile(path); err != nil {
		a.logger.Error(err)
	}
}

// startJournal attaches a progress journal at path for the duration of one
// build. The returned function detaches it.
func (a *App) startJournal(path string) func() error {
	noop := func() error { return nil }
	if path == "" {
		return noop
	}
	j, ok := a.telemetry.(journaler)
	if !ok {
		a.logger.Warn("progress journal is not supported", "path", path)
		return noop
	}
	stop, err := j.Journal(path)
	if err != nil {
		a.logger.Error(err)
		return noop
	}
	return stop
}

func documentDir(master string) (string, error) {
	abs, err := filepath.Abs(master)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve master file"), "file", master)
	}
	return filepath.Dir(abs), nil
}
