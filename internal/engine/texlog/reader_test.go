package texlog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/texrun/internal/engine/texlog"
)

func TestReader_StripsControlCharacters(t *testing.T) {
	r := texlog.NewReader(strings.NewReader("first\r\nsec\x00ond\n\nlast"))

	var got []string
	for {
		line, ok := r.Next()
		if !ok {
			break
		}
		got = append(got, line)
	}
	assert.Equal(t, []string{"first", "second", "", "last"}, got)
}

func TestReader_Peek(t *testing.T) {
	r := texlog.NewReader(strings.NewReader("a\nb\n"))

	line, ok := r.Peek()
	require.True(t, ok)
	assert.Equal(t, "a", line)

	line, ok = r.Next()
	require.True(t, ok)
	assert.Equal(t, "a", line)

	line, ok = r.Next()
	require.True(t, ok)
	assert.Equal(t, "b", line)

	_, ok = r.Peek()
	assert.False(t, ok)
}

func TestReader_LongLine(t *testing.T) {
	long := strings.Repeat("x", 2<<20)
	lines := texlog.Lines(strings.NewReader(long + "\nOutput written on main.pdf (1 page, 1234 bytes).\n"))

	require.Len(t, lines, 2)
	assert.Len(t, lines[0], len(long))
	assert.Equal(t, "Output written on main.pdf (1 page, 1234 bytes).", lines[1])
}

func TestReader_DecodesLatin1(t *testing.T) {
	lines := texlog.Lines(strings.NewReader("Missing character: There is no \xe9 in font\n"))
	require.Len(t, lines, 1)
	assert.Equal(t, "Missing character: There is no é in font", lines[0])
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.log")
	require.NoError(t, os.WriteFile(path, []byte("This is pdfTeX\n"), 0o600))

	r, closer, err := texlog.Open(path)
	require.NoError(t, err)
	defer closer.Close()

	line, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, "This is pdfTeX", line)

	_, _, err = texlog.Open(filepath.Join(dir, "missing.log"))
	assert.Error(t, err)
}
