// Package labels indexes the cross-reference labels defined in the sources
// of a document.
package labels

import (
	"bufio"
	"iter"
	"os"
	"regexp"
	"strings"

	"go.trai.ch/texrun/internal/core/ports"
	"go.trai.ch/zerr"
)

// reLabel matches \label{name}, allowing spaces before the brace.
var reLabel = regexp.MustCompile(`\\label\s*\{([^{}]+)\}`)

// sourceExtensions are the files searched for labels.
var sourceExtensions = []string{".tex", ".ltx", ".lyx"}

// FileWalker yields the files below a directory.
type FileWalker interface {
	WalkFiles(root string, exts []string) iter.Seq[string]
}

var _ ports.LabelIndex = (*Index)(nil)

// Index is a set of label names.
type Index struct {
	labels map[string]struct{}
}

// HasLabel reports whether label is defined in the indexed sources.
func (i *Index) HasLabel(label string) bool {
	_, ok := i.labels[strings.TrimSpace(label)]
	return ok
}

// Len returns the number of distinct labels.
func (i *Index) Len() int {
	return len(i.labels)
}

// Scanner builds label indices.
type Scanner struct {
	walker FileWalker
}

// NewScanner creates a Scanner using walker to enumerate sources.
func NewScanner(walker FileWalker) *Scanner {
	return &Scanner{walker: walker}
}

// Scan indexes the labels of every source file below dir. Unreadable files
// are skipped.
func (s *Scanner) Scan(dir string) *Index {
	idx := &Index{labels: make(map[string]struct{})}
	for path := range s.walker.WalkFiles(dir, sourceExtensions) {
		_ = idx.addFile(path)
	}
	return idx
}

// Index returns the label index of the sources below dir.
func (s *Scanner) Index(dir string) ports.LabelIndex {
	return s.Scan(dir)
}

func (i *Index) addFile(path string) error {
	f, err := os.Open(path) //nolint:gosec // sources found below the document directory
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open source"), "path", path)
	}
	defer f.Close() //nolint:errcheck // read-only file

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if c := commentStart(line); c >= 0 {
			line = line[:c]
		}
		for _, m := range reLabel.FindAllStringSubmatch(line, -1) {
			i.labels[strings.TrimSpace(m[1])] = struct{}{}
		}
	}
	return sc.Err()
}

// commentStart returns the index of the first unescaped "%", or -1.
func commentStart(line string) int {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '%':
			return i
		}
	}
	return -1
}
