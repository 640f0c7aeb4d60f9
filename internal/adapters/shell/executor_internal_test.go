package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/texrun/internal/core/domain"
	"go.trai.ch/texrun/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestResolveEnvironment(t *testing.T) {
	sysEnv := []string{"PATH=/usr/bin", "TEXINPUTS=.:", "HOME=/home/tex", "BROKEN"}
	extra := map[string]string{"HOME": "/tmp/tex", "SOURCE_DATE_EPOCH": "0"}

	got := resolveEnvironment(sysEnv, "/docs", extra)

	assert.Equal(t, []string{
		"BIBINPUTS=/docs:",
		"BSTINPUTS=/docs:",
		"HOME=/tmp/tex",
		"PATH=/usr/bin",
		"SOURCE_DATE_EPOCH=0",
		"TEXINPUTS=/docs:.:",
	}, got)
}

func TestResolveEnvironment_NoSearchPath(t *testing.T) {
	got := resolveEnvironment([]string{"PATH=/usr/bin"}, "", nil)
	assert.Equal(t, []string{"PATH=/usr/bin"}, got)
}

func TestLogWriter_FragmentedWrites(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	gomock.InOrder(
		logger.EXPECT().Debug("part1part2", "tool", "latex"),
		logger.EXPECT().Debug("tail", "tool", "latex"),
	)

	w := &logWriter{logger: logger, tool: "latex", level: domain.LogLevelDebug}
	_, _ = w.Write([]byte("part1"))
	_, _ = w.Write([]byte("part2\r\n\n"))
	_, _ = w.Write([]byte("tail"))
	w.Flush()
	w.Flush()
}

func TestLogWriter_Warnings(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn("bad", "tool", "index")

	w := &logWriter{logger: logger, tool: "index", level: domain.LogLevelWarn}
	n, err := w.Write([]byte("bad\n"))
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, -1, exitCode(assert.AnError))
}
