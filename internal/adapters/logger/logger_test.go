package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/texrun/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func newBufferedLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Levels(t *testing.T) {
	lg, buf := newBufferedLogger(t)

	lg.Debug("hidden")
	lg.Info("compiling", "file", "main.tex")
	lg.Warn("rerun needed")
	lg.Error(os.ErrPermission)

	assert.Equal(t,
		"compiling file=main.tex\n"+
			"! rerun needed\n"+
			"✗ Error: permission denied\n",
		buf.String())
}

func TestLogger_SetVerbose(t *testing.T) {
	lg, buf := newBufferedLogger(t)

	lg.SetVerbose(true)
	lg.Debug("This is pdfTeX", "tool", "latex")
	lg.SetVerbose(false)
	lg.Debug("dropped")

	assert.Equal(t, "This is pdfTeX tool=latex\n", buf.String())
}

func TestLogger_ErrorChain(t *testing.T) {
	lg, buf := newBufferedLogger(t)

	err := zerr.Wrap(zerr.Wrap(errors.New("no such file"), "open dependency file"), "build failed")
	lg.Error(err)

	want := strings.Join([]string{
		"✗ Error: build failed",
		"",
		"  Caused by:",
		"    → open dependency file",
		"    → no such file",
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestLogger_ErrorNil(t *testing.T) {
	lg, buf := newBufferedLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newBufferedLogger(t)
	lg.SetJSON(true)

	lg.Info("compiled", "runs", 2)
	lg.Error(errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &info))
	assert.Equal(t, "INFO", info["level"])
	assert.Equal(t, "compiled", info["msg"])
	assert.InDelta(t, 2, info["runs"], 0)

	var failure map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &failure))
	assert.Equal(t, "ERROR", failure["level"])
	assert.Equal(t, "boom", failure["error"])
}

func TestLogger_SetOutputNil(t *testing.T) {
	lg := logger.New()
	assert.NotPanics(t, func() { lg.SetOutput(nil) })
}

func TestLogger_ErrorMetadataWrapper(t *testing.T) {
	lg, buf := newBufferedLogger(t)

	lg.Error(zerr.With(errors.New("exit status 1"), "tool", "bibtex"))

	assert.Equal(t, "✗ Error: exit status 1\n", buf.String())
}
