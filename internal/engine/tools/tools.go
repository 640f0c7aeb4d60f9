// Package tools runs the auxiliary processors of a LaTeX build: the
// bibliography processor, the index processor and the nomenclature processor,
// and scans their logs.
package tools

import (
	"context"
	"path/filepath"
	"strings"

	"go.trai.ch/texrun/internal/core/domain"
	"go.trai.ch/texrun/internal/core/ports"
)

// Env is shared by every tool run of one build.
type Env struct {
	Exec     ports.Executor
	Logger   ports.Logger
	Dir      string
	Settings domain.Settings
}

func (e Env) run(ctx context.Context, name, command string) domain.ExitStatus {
	e.Logger.Debug("running tool", "tool", name, "command", command)
	status := e.Exec.Run(ctx, domain.Invocation{
		Name:       name,
		Command:    command,
		Dir:        e.Dir,
		SearchPath: e.Settings.SearchPath,
		Env:        e.Settings.Env,
		Wait:       e.Settings.Wait,
	})
	if !status.OK() {
		e.Logger.Warn("tool did not succeed", "tool", name, "code", status.Code,
			"killed", status.Killed, "timed_out", status.TimedOut)
	}
	return status
}

// path resolves name against the build directory.
func (e Env) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(e.Dir, name)
}

// Quote quotes s for a POSIX shell.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ChangeExtension replaces the extension of path with ext, or appends ext
// when path has none. ext includes the leading dot.
func ChangeExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func baseName(path string) string {
	return filepath.Base(strings.TrimSuffix(path, filepath.Ext(path)))
}
