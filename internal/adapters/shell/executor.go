// Package shell provides the shell executor adapter.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"go.trai.ch/texrun/internal/core/domain"
	"go.trai.ch/texrun/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	// defaultPollInterval is used by polling waits that do not set an interval.
	defaultPollInterval = 100 * time.Millisecond
	// codeNotStarted is reported when the shell could not be started.
	codeNotStarted = 127
	// waitDelay bounds the wait for output pipes after the process was killed.
	waitDelay = time.Second
)

// searchPathVars are the TeX variables the invocation search path is prepended to.
var searchPathVars = []string{"TEXINPUTS", "BIBINPUTS", "BSTINPUTS"}

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor by running commands through sh.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Run executes the invocation's command line with "sh -c" in the invocation
// directory and waits for it according to its WaitPolicy.
//
// Output is written to the logger line by line, standard output at debug
// level and error output as warnings. A vertex carried by ctx receives a copy.
func (e *Executor) Run(ctx context.Context, inv domain.Invocation) domain.ExitStatus {
	cmd := exec.Command("sh", "-c", inv.Command) //nolint:gosec // command lines come from the build settings
	cmd.Dir = inv.Dir
	cmd.Env = resolveEnvironment(os.Environ(), inv.SearchPath, inv.Env)
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	stdout, stderr, flush := e.outputs(ctx, inv.Name)
	defer flush()
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		e.logger.Error(zerr.With(zerr.Wrap(err, "failed to start command"), "tool", inv.Name))
		return domain.ExitStatus{Code: codeNotStarted}
	}

	return wait(ctx, cmd, inv.Wait)
}

// wait blocks until cmd exits, its time limit passes, or (for polling waits)
// ctx is cancelled. The process group is killed in the latter two cases.
func wait(ctx context.Context, cmd *exec.Cmd, policy domain.WaitPolicy) domain.ExitStatus {
	done := make(chan struct{})
	var g errgroup.Group
	g.Go(func() error {
		defer close(done)
		return cmd.Wait()
	})

	var timeout <-chan time.Time
	if policy.Timeout > 0 {
		timer := time.NewTimer(policy.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var poll <-chan time.Time
	if policy.Mode == domain.WaitPolling {
		interval := policy.PollInterval
		if interval <= 0 {
			interval = defaultPollInterval
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		poll = ticker.C
	}

	var status domain.ExitStatus
loop:
	for {
		select {
		case <-done:
			break loop
		case <-timeout:
			status.TimedOut = true
			killProcessGroup(cmd)
			break loop
		case <-poll:
			if ctx.Err() != nil {
				status.Killed = true
				killProcessGroup(cmd)
				break loop
			}
		}
	}

	err := g.Wait()
	if status.Aborted() {
		return status
	}
	status.Code = exitCode(err)
	return status
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code != 0 {
			return code
		}
	}
	return -1
}

func (e *Executor) outputs(ctx context.Context, tool string) (stdout, stderr io.Writer, flush func()) {
	out := &logWriter{logger: e.logger, tool: tool, level: domain.LogLevelDebug}
	errOut := &logWriter{logger: e.logger, tool: tool, level: domain.LogLevelWarn}
	flush = func() {
		out.Flush()
		errOut.Flush()
	}

	if vertex := ports.VertexFromContext(ctx); vertex != nil {
		return io.MultiWriter(out, vertex.Stdout()), io.MultiWriter(errOut, vertex.Stderr()), flush
	}
	return out, errOut, flush
}

// logWriter turns process output into one log record per line.
type logWriter struct {
	logger ports.Logger
	tool   string
	level  domain.LogLevel
	buf    bytes.Buffer
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(w.buf.Next(i + 1))
		w.emit(strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

// Flush logs a trailing line that was not terminated by a newline.
func (w *logWriter) Flush() {
	if w.buf.Len() == 0 {
		return
	}
	w.emit(w.buf.String())
	w.buf.Reset()
}

func (w *logWriter) emit(line string) {
	if line == "" {
		return
	}
	if w.level == domain.LogLevelWarn {
		w.logger.Warn(line, "tool", w.tool)
		return
	}
	w.logger.Debug(line, "tool", w.tool)
}

// resolveEnvironment merges environment variables with the following priority
// (low to high):
// 1. sysEnv (System base)
// 2. extra (Configured variables)
//
// A non-empty searchPath is then prepended to the TeX search variables. The
// trailing separator keeps the compiled-in default paths active.
func resolveEnvironment(sysEnv []string, searchPath string, extra map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(extra))
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}

	for k, v := range extra {
		envMap[k] = v
	}

	if searchPath != "" {
		sep := string(os.PathListSeparator)
		for _, name := range searchPathVars {
			envMap[name] = searchPath + sep + envMap[name]
		}
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}
