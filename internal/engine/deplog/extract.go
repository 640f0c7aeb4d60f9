// Package deplog extracts the files a LaTeX pass read or wrote from its log
// and records them in the dependency table.
//
// File names in a TeX log may contain spaces and may be broken across lines
// at the log's line width. Lines that end in what looks like a partial file
// name are joined with the following line before matching.
package deplog

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.trai.ch/texrun/internal/engine/deptable"
	"go.trai.ch/texrun/internal/engine/texlog"
)

const (
	maxTokenLen  = 255
	keepTokenLen = 251
)

var (
	reFile          = regexp.MustCompile(`^File: (.+).*$`)
	reNoFile        = regexp.MustCompile(`^No file (.+)(.).*$`)
	reOpenout       = regexp.MustCompile("^\\\\openout[0-9]+.*=.*`(.+)(..).*$")
	reOpenoutLua    = regexp.MustCompile(`^\\openout[0-9]+.*=\s*(.+)$`)
	reIndexFile     = regexp.MustCompile(`^Writing index file (.+).*$`)
	reGlossaryFile  = regexp.MustCompile(`^Writing glossary file (.+).*$`)
	reNomenclFile   = regexp.MustCompile(`^.*Writing nomenclature file (.+).*$`)
	reMiktexToc     = regexp.MustCompile(`^\\tf@toc=\\write.*$`)
	reAngleLine     = regexp.MustCompile(`^.*<[^>]+.*$`)
	reParenLine     = regexp.MustCompile(`^.*\([^)]+.*$`)
	reAngleGroup    = regexp.MustCompile(`<([^>]+)(.)`)
	reParenGroup    = regexp.MustCompile(`\(([^()]+)(.)`)
	rePackageInfo   = regexp.MustCompile(`^Package \w+ Info: .*$`)
	rePackageWarn   = regexp.MustCompile(`^Package \w+ Warning: .*$`)
	reUnwantedFiles = regexp.MustCompile(`^.*\.(aux|log|dvi|bbl|ind)$`)
)

// Lines starting with these never continue a file name from the line before.
var nonContinuation = []string{
	"File:", "(Font)", "Package:", "Language:", "LaTeX Info:",
	"LaTeX Font Info:", `\openout[`, "))",
}

// Extractor resolves the file names found in a log against a working
// directory.
type Extractor struct {
	// Dir is the directory the compiler ran in. Relative names resolve here.
	Dir string
	// Master is the master .tex file, absolute or relative to Dir.
	Master string

	table *deptable.Table
}

// New creates an Extractor that inserts into table.
func New(table *deptable.Table, dir, master string) *Extractor {
	return &Extractor{Dir: dir, Master: master, table: table}
}

// ExtractFile reads the log at path. A missing log only adds the master.
func (x *Extractor) ExtractFile(path string) {
	r, closer, err := texlog.Open(path)
	if err != nil {
		x.table.Insert(x.masterPath(), true)
		return
	}
	defer closer.Close() //nolint:errcheck // read-only file
	x.extract(r)
}

// Extract reads a log from r.
func (x *Extractor) Extract(r io.Reader) {
	x.extract(texlog.NewReader(r))
}

func (x *Extractor) extract(src *texlog.Reader) {
	var lastline string
	for {
		token, ok := src.Next()
		if !ok {
			break
		}
		if token == "" || token == ")" {
			lastline = ""
			continue
		}

		if lastline != "" && startsNewStatement(token) {
			lastline = ""
		}
		if lastline != "" {
			token = lastline + token
		}
		if len(token) > maxTokenLen {
			token = token[len(token)-keepTokenLen:]
		}

		if x.scanToken(token) {
			lastline = token
		} else {
			lastline = ""
		}
	}

	x.table.Insert(x.masterPath(), true)
}

func startsNewStatement(token string) bool {
	for _, p := range nonContinuation {
		if strings.HasPrefix(token, p) {
			return true
		}
	}
	return rePackageInfo.MatchString(token) || rePackageWarn.MatchString(token)
}

// scanToken inserts every file found in token and reports whether the token
// probably ends inside a file name.
func (x *Extractor) scanToken(token string) bool {
	var fragment bool

	if m := reFile.FindStringSubmatch(token); m != nil {
		fragment = !x.completeFilename(m[1])
		if strings.HasSuffix(token, ")") {
			fragment = false
		}
	} else if m := reNoFile.FindStringSubmatch(token); m != nil {
		// names carry a dot and the sentence ends with one
		if strings.Contains(m[1], ".") && m[2] == "." {
			fragment = !x.handleFoundFile(m[1])
		} else {
			fragment = true
		}
	} else if m := reOpenout.FindStringSubmatch(token); m != nil {
		if m[2] == "'." {
			fragment = !x.handleFoundFile(m[1])
		} else {
			fragment = true
		}
	} else if m := reOpenoutLua.FindStringSubmatch(token); m != nil {
		if strings.Contains(m[1], ".") {
			fragment = !x.handleFoundFile(m[1])
		} else {
			fragment = true
		}
	} else if m := reIndexFile.FindStringSubmatch(token); m != nil {
		fragment = !x.completeFilename(m[1])
	} else if m := firstMatch(token, reNomenclFile, reGlossaryFile); m != nil {
		fragment = !x.completeFilename(m[1])
	} else if reMiktexToc.MatchString(token) {
		// MiKTeX announces the toc without an \openout line
		toc := strings.TrimSuffix(filepath.Base(x.Master), filepath.Ext(x.Master)) + ".toc"
		fragment = !x.handleFoundFile(toc)
	}

	pos := -1
	if reAngleLine.MatchString(token) {
		pos = x.iterateLine(token, reAngleGroup, "<", ">", pos)
		fragment = pos != -1
	}
	// checked separately so that "File: a.eps (type eps)" still yields a.eps
	if reParenLine.MatchString(token) {
		pos = x.iterateLine(token, reParenGroup, "(", ")", pos)
		fragment = pos != -1
	}
	return fragment
}

func firstMatch(token string, res ...*regexp.Regexp) []string {
	for _, re := range res {
		if m := re.FindStringSubmatch(token); m != nil {
			return m
		}
	}
	return nil
}

// iterateLine handles every delimited group on the line. It returns the
// position of a trailing fragment, or -1 when the line ends cleanly.
func (x *Extractor) iterateLine(token string, re *regexp.Regexp, opening, closing string, fragmentPos int) int {
	fragment := false
	lastMatch := ""
	first := 0

	for first < len(token) {
		loc := re.FindStringSubmatchIndex(token[first:])
		if loc == nil {
			break
		}
		name := token[first+loc[2] : first+loc[3]]
		delim := token[first+loc[4] : first+loc[5]]
		end := first + loc[1]

		switch {
		case strings.Contains(name, "."):
			first = end
			switch delim {
			case closing:
				x.handleFoundFile(name)
				fragment = false
			case opening:
				// nested chain such as "(a.sty (b.cfg))"
				fragment = !x.handleFoundFile(strings.TrimRight(name, " \t"))
				first--
			default:
				fragment = !x.handleFoundFile(name + delim)
			}
		case delim != closing:
			// no dot and no closing delimiter: probably a line break
			first = end
			fragment = true
		default:
			first = end
			fragment = false
		}
		lastMatch = name
	}

	lastPos := -1
	if lastMatch != "" {
		lastPos = strings.Index(token, lastMatch)
	}
	if fragment {
		if lastPos > fragmentPos {
			return lastPos
		}
		return fragmentPos
	}
	if lastPos < fragmentPos {
		return fragmentPos
	}
	return -1
}

// AddFile resolves a file named by another tool's log, such as a bibliography
// database reported by biber, and inserts it. It reports whether the file was
// found.
func (x *Extractor) AddFile(name string) bool {
	return x.handleFoundFile(name)
}

// completeFilename treats names without a dot as fragments.
func (x *Extractor) completeFilename(name string) bool {
	if !strings.Contains(name, ".") {
		return false
	}
	return x.handleFoundFile(name)
}

// handleFoundFile inserts the file named in the log if it can be found, and
// reports whether it was.
func (x *Extractor) handleFoundFile(raw string) bool {
	found := filepath.FromSlash(strings.TrimSpace(raw))

	if filepath.IsAbs(found) {
		if x.insertIfExists(found) {
			return true
		}
		stripped := found
		for strings.Contains(stripped, " ") {
			if x.insertIfExists(strings.ReplaceAll(stripped, `"`, "")) {
				return true
			}
			stripped = stripped[:strings.LastIndexByte(stripped, ' ')]
			if x.insertIfExists(stripped) {
				return true
			}
		}
	}

	only := filepath.Base(found)
	abs := x.resolve(only)
	for strings.Contains(found, " ") {
		if exists(abs) {
			break
		}
		if unquoted := x.resolve(strings.ReplaceAll(found, `"`, "")); exists(unquoted) {
			abs = unquoted
			break
		}
		found = found[:strings.LastIndexByte(found, ' ')]
		only = filepath.Base(found)
		abs = x.resolve(only)
	}

	if !isRegular(abs) {
		return false
	}
	switch {
	case reUnwantedFiles.MatchString(only):
	case strings.HasSuffix(only, ".tex"):
		x.table.Insert(abs, true)
	default:
		x.table.Insert(abs, false)
	}
	return true
}

func (x *Extractor) insertIfExists(path string) bool {
	if !isRegular(path) {
		return false
	}
	x.table.Insert(path, true)
	return true
}

func (x *Extractor) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(x.Dir, name)
}

func (x *Extractor) masterPath() string {
	return x.resolve(x.Master)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
