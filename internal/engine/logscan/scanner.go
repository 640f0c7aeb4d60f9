// Package logscan classifies the compiler log of one LaTeX pass.
//
// The scanner walks the log once, line by line, and reports a set of signals
// (errors, warnings, rerun requests, undefined citations and references)
// together with error records that carry line numbers and the child file the
// message was written in.
package logscan

import (
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/texrun/internal/core/domain"
	"go.trai.ch/texrun/internal/core/ports"
	"go.trai.ch/texrun/internal/engine/texlog"
)

const (
	// maxSameLineErrors is the number of errors recorded for a single source line.
	maxSameLineErrors = 5
	// maxErrorContextLines bounds the search for the "l.<n>" line after an error.
	maxErrorContextLines = 15
	// maxEmergencyLines bounds the context collected after "! Emergency stop.".
	maxEmergencyLines = 5

	preambleNote = "(NOTE: The erroneous command is in the preamble)"
)

var (
	reFileLineError = regexp.MustCompile(`^.+\.\D+:[0-9]+: (.+)$`)
	reChildFile     = regexp.MustCompile(`^[^0-9]*([0-9]+[A-Za-z]*_.+\.tex).*$`)
	reUndefRef      = regexp.MustCompile("^.*Reference `(.+)' on page.*$")
)

// Options configures a Scanner.
type Options struct {
	// MasterFile is the base name of the master .tex file. Included files whose
	// names look like child documents are attributed unless they are the master.
	MasterFile string
	// OutputFile is probed when the PDF driver reports a failure.
	OutputFile string
	// IncludeAll suppresses citation signals while compiling with all children included.
	IncludeAll bool
	// IgnoreMissingGlyphs suppresses "Missing character" errors.
	IgnoreMissingGlyphs bool
	// Labels resolves reference labels. A nil index treats every label as unknown.
	Labels ports.LabelIndex
}

// Result is the outcome of one scan.
type Result struct {
	Signals domain.Signal
	// Children lists the child documents seen in the log, in order.
	Children []string
	// Biber is set when a package asked for biber instead of bibtex.
	Biber bool
	// ErrorCount counts every TeX error, including those not recorded
	// because of the same-line limit.
	ErrorCount int
}

type childFrame struct {
	name  string
	depth int
}

// Scanner holds the state of a log scan. A Scanner can be reused; every call
// to Scan starts from a clean state.
type Scanner struct {
	opts Options

	src  *texlog.Reader
	diag *domain.Diagnostics
	res  Result

	pending       string
	waitForError  string
	children      []childFrame
	depth         int
	fileLineError bool
	lastErrorLine int
	sameLineCount int
}

// New creates a Scanner.
func New(opts Options) *Scanner {
	return &Scanner{opts: opts}
}

// ScanFile scans the log at path. A missing log yields an empty result.
func (s *Scanner) ScanFile(path string, diag *domain.Diagnostics) Result {
	f, err := os.Open(path) //nolint:gosec // log path is derived from the master file
	if err != nil {
		diag.ClearRefs()
		return Result{}
	}
	defer f.Close() //nolint:errcheck // read-only file
	return s.Scan(f, diag)
}

// Scan classifies the log read from r. Reference records in diag are
// replaced; error records are appended.
func (s *Scanner) Scan(r io.Reader, diag *domain.Diagnostics) Result {
	s.reset(r, diag)
	diag.ClearRefs()

	for {
		line, ok := s.src.Next()
		if !ok {
			break
		}
		s.step(line)
	}
	return s.res
}

func (s *Scanner) reset(r io.Reader, diag *domain.Diagnostics) {
	s.src = texlog.NewReader(r)
	s.diag = diag
	s.res = Result{}
	s.pending = ""
	s.waitForError = ""
	s.children = nil
	s.depth = 0
	s.fileLineError = false
	s.lastErrorLine = -1
	s.sameLineCount = 1
}

func (s *Scanner) step(line string) {
	if line == "" {
		return
	}
	if s.pending != "" {
		s.pending += line
	}

	s.trackChildren(line)

	if strings.Contains(line, "file:line:error style messages enabled") {
		s.fileLineError = true
	}

	if !s.opts.IncludeAll &&
		(strings.Contains(line, "There were undefined citations.") ||
			strings.HasPrefix(line, "Package biblatex Warning: The following entry could not be found")) {
		s.res.Signals.Set(domain.UndefCit)
	}

	for _, r := range lineRules {
		if r.match(s, line) {
			r.handle(s, line)
			return
		}
	}
}

// trackChildren maintains the stack of open child documents. Every "(" opens
// a nesting level; when the text after it names a child document, that child
// is current until the matching ")".
func (s *Scanner) trackChildren(line string) {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '(':
			s.depth++
			seg := line[i+1:]
			if j := strings.IndexByte(seg, '('); j >= 0 {
				seg = seg[:j]
			}
			m := reChildFile.FindStringSubmatch(seg)
			if m == nil {
				continue
			}
			if name := m[1]; name != s.opts.MasterFile {
				s.children = append(s.children, childFrame{name: name, depth: s.depth})
				s.res.Children = append(s.res.Children, name)
			}
			i += len(seg)
		case ')':
			if n := len(s.children); n > 0 && s.children[n-1].depth == s.depth {
				s.children = s.children[:n-1]
			}
			s.depth--
		}
	}
}

func (s *Scanner) child() string {
	if n := len(s.children); n > 0 {
		return s.children[n-1].name
	}
	return ""
}

func (s *Scanner) set(flags domain.Signal) {
	s.res.Signals.Set(flags)
}

// next returns the next raw line, or "" at end of input.
func (s *Scanner) next() string {
	line, _ := s.src.Next()
	return line
}

func (s *Scanner) peek() string {
	line, _ := s.src.Peek()
	return line
}

// lineNumber returns the number following the word "line" in a warning.
func lineNumber(token string) int {
	fields := strings.Split(token, " ")
	idx := 0
	for i, f := range fields {
		if f == "line" {
			idx = i + 1
			break
		}
	}
	if idx >= len(fields) {
		return 0
	}
	return leadingInt(fields[idx])
}

// leadingInt parses the decimal prefix of s, returning 0 when there is none.
func leadingInt(s string) int {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
