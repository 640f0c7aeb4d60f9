package domain

import "time"

// WaitMode selects how an invocation waits for its process.
type WaitMode int

const (
	// WaitBlocking waits for the process without observing cancellation.
	WaitBlocking WaitMode = iota
	// WaitPolling checks for cancellation every poll interval while waiting.
	WaitPolling
)

// WaitPolicy configures waiting, cancellation and time limits for an invocation.
type WaitPolicy struct {
	Mode         WaitMode
	PollInterval time.Duration
	// Timeout <= 0 means the invocation never times out.
	Timeout time.Duration
}

// Invocation describes one external tool run.
type Invocation struct {
	// Name identifies the tool for telemetry and logs ("latex", "bibtex", ...).
	Name string
	// Command is a shell command line.
	Command string
	// Dir is the working directory.
	Dir string
	// SearchPath is prepended to the TeX input search paths when non-empty.
	SearchPath string
	// Env holds extra environment variables.
	Env  map[string]string
	Wait WaitPolicy
}

// ExitStatus is the tri-state outcome of an invocation: an exit code, or
// killed, or timed out.
type ExitStatus struct {
	Code     int
	Killed   bool
	TimedOut bool
}

// OK reports a zero exit code from a process that ran to completion.
func (s ExitStatus) OK() bool {
	return !s.Killed && !s.TimedOut && s.Code == 0
}

// Aborted reports whether the process was killed or timed out.
func (s ExitStatus) Aborted() bool {
	return s.Killed || s.TimedOut
}

// Signal maps an aborted status to KILLED or TIMEOUT, and anything else to NoErrors.
func (s ExitStatus) Signal() Signal {
	switch {
	case s.Killed:
		return Killed
	case s.TimedOut:
		return Timeout
	default:
		return NoErrors
	}
}
