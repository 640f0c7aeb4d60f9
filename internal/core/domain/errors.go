package domain

import "go.trai.ch/zerr"

var (
	// ErrNoInputFile is returned when no master file is given.
	ErrNoInputFile = zerr.New("no input file specified")

	// ErrNotTeXFile is returned when the master file does not have a .tex extension.
	ErrNotTeXFile = zerr.New("input is not a .tex file")

	// ErrBuildFailed is returned when the compilation finished with errors.
	ErrBuildFailed = zerr.New("build failed")

	// ErrBuildAborted is returned when a tool invocation was killed or timed out.
	ErrBuildAborted = zerr.New("build aborted")

	// ErrInvalidConfig is returned when the configuration file cannot be used.
	ErrInvalidConfig = zerr.New("invalid configuration")
)
