// Package texlog reads TeX tool logs line by line.
//
// TeX writes its logs in the input encoding of the document, so a log may
// mix UTF-8 with 8-bit text. Lines that are not valid UTF-8 are decoded as
// Latin-1.
package texlog

import (
	"bufio"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"go.trai.ch/zerr"
	"golang.org/x/text/encoding/charmap"
)

// Reader yields cleaned log lines and supports one line of lookahead.
type Reader struct {
	br      *bufio.Reader
	done    bool
	peeked  *string
	decoder func(string) string
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r), decoder: decodeLatin1}
}

// Open opens the log file at path.
func Open(path string) (*Reader, io.Closer, error) {
	f, err := os.Open(path) //nolint:gosec // log paths are derived from the master file
	if err != nil {
		return nil, nil, zerr.With(zerr.Wrap(err, "failed to open log"), "path", path)
	}
	return NewReader(f), f, nil
}

// Next returns the next line with NUL and CR characters removed. Lines of any
// length are returned whole. The second result is false at end of input or
// on a read error.
func (r *Reader) Next() (string, bool) {
	if r.peeked != nil {
		line := *r.peeked
		r.peeked = nil
		return line, true
	}
	if r.done {
		return "", false
	}
	line, err := r.br.ReadString('\n')
	if err != nil {
		r.done = true
		if line == "" {
			return "", false
		}
	}
	return Clean(r.decode(strings.TrimSuffix(line, "\n"))), true
}

// Peek returns the next line without consuming it.
func (r *Reader) Peek() (string, bool) {
	if r.peeked != nil {
		return *r.peeked, true
	}
	line, ok := r.Next()
	if !ok {
		return "", false
	}
	r.peeked = &line
	return line, true
}

func (r *Reader) decode(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return r.decoder(s)
}

func decodeLatin1(s string) string {
	out, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		return strings.ToValidUTF8(s, "?")
	}
	return out
}

// Clean removes NUL and CR characters.
func Clean(s string) string {
	if !strings.ContainsAny(s, "\x00\r") {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == 0 || r == '\r' {
			return -1
		}
		return r
	}, s)
}

// Lines returns all cleaned lines of r.
func Lines(r io.Reader) []string {
	var lines []string
	rd := NewReader(r)
	for {
		line, ok := rd.Next()
		if !ok {
			return lines
		}
		lines = append(lines, line)
	}
}
