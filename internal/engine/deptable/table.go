// Package deptable implements the checksum ledger that decides whether a
// document needs recompiling.
package deptable

import (
	"bufio"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/texrun/internal/core/domain"
	"go.trai.ch/texrun/internal/core/ports"
	"go.trai.ch/zerr"
)

// Entry is the ledger state of one tracked file.
type Entry struct {
	Path string
	// Checksum is the checksum computed by the latest Insert or Update.
	Checksum uint64
	// Previous is the checksum before the latest Update.
	Previous uint64
	// Reference marks files the compiler reads but never writes.
	Reference bool
}

// Changed reports whether the checksum moved since the latest Update.
func (e Entry) Changed() bool {
	return e.Checksum != e.Previous
}

// Table is the dependency ledger of one master document.
type Table struct {
	sums    ports.Checksummer
	entries map[domain.InternedString]*Entry
}

// New creates an empty table.
func New(sums ports.Checksummer) *Table {
	return &Table{
		sums:    sums,
		entries: make(map[domain.InternedString]*Entry),
	}
}

func key(path string) domain.InternedString {
	return domain.NewInternedString(filepath.Clean(path))
}

func (t *Table) checksum(path string) uint64 {
	sum, err := t.sums.Checksum(path)
	if err != nil {
		return 0
	}
	return sum
}

// Insert starts tracking path. Reference files get their checksum right away;
// others start at 0 and pick up their checksum on the next Update. Paths that
// are already tracked are left untouched.
func (t *Table) Insert(path string, reference bool) {
	k := key(path)
	if _, ok := t.entries[k]; ok {
		return
	}
	e := &Entry{Path: k.String(), Reference: reference}
	if reference {
		e.Checksum = t.checksum(e.Path)
	}
	t.entries[k] = e
}

// Update shifts every current checksum into Previous and recomputes it.
func (t *Table) Update() {
	for _, e := range t.entries {
		e.Previous = e.Checksum
		e.Checksum = t.checksum(e.Path)
	}
}

// SumChange reports whether any tracked file changed since the latest Update.
func (t *Table) SumChange() bool {
	for _, e := range t.entries {
		if e.Changed() {
			return true
		}
	}
	return false
}

// HasChanged reports whether path is tracked, changed, and is not empty or missing.
func (t *Table) HasChanged(path string) bool {
	e, ok := t.entries[key(path)]
	return ok && e.Changed() && e.Checksum != 0
}

// ExtChanged reports whether any tracked file ending in ext changed.
func (t *Table) ExtChanged(ext string) bool {
	for _, e := range t.entries {
		if strings.HasSuffix(e.Path, ext) && e.Changed() {
			return true
		}
	}
	return false
}

// Exists reports whether path is tracked.
func (t *Table) Exists(path string) bool {
	_, ok := t.entries[key(path)]
	return ok
}

// Remove stops tracking path.
func (t *Table) Remove(path string) {
	delete(t.entries, key(path))
}

// RemoveByExtension stops tracking every file ending in ext.
func (t *Table) RemoveByExtension(ext string) {
	maps.DeleteFunc(t.entries, func(_ domain.InternedString, e *Entry) bool {
		return strings.HasSuffix(e.Path, ext)
	})
}

// Len returns the number of tracked files.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the entries sorted by path.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.Path, b.Path) })
	return out
}

// Load replaces the table with the ledger stored at path. It returns false
// and leaves the table empty when the file is missing or malformed. Loaded
// entries have Previous set to 0.
func (t *Table) Load(path string) bool {
	t.entries = make(map[domain.InternedString]*Entry)

	f, err := os.Open(path) //nolint:gosec // ledger path is derived from the master file
	if err != nil {
		return false
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		e, err := parseLine(line)
		if err != nil {
			t.entries = make(map[domain.InternedString]*Entry)
			return false
		}
		t.entries[key(e.Path)] = e
	}
	if sc.Err() != nil {
		t.entries = make(map[domain.InternedString]*Entry)
		return false
	}
	return len(t.entries) > 0
}

func parseLine(line string) (*Entry, error) {
	sumField, rest, ok := strings.Cut(line, " ")
	if !ok {
		return nil, zerr.New("missing reference flag")
	}
	refField, path, ok := strings.Cut(rest, " ")
	if !ok || path == "" {
		return nil, zerr.New("missing path")
	}
	sum, err := strconv.ParseUint(sumField, 16, 64)
	if err != nil {
		return nil, zerr.Wrap(err, "malformed checksum")
	}
	var ref bool
	switch refField {
	case "0":
	case "1":
		ref = true
	default:
		return nil, zerr.With(zerr.New("malformed reference flag"), "flag", refField)
	}
	return &Entry{Path: filepath.Clean(path), Checksum: sum, Reference: ref}, nil
}

// Save writes the ledger to path, one entry per line sorted by path.
func (t *Table) Save(path string) error {
	var b strings.Builder
	for _, e := range t.Entries() {
		ref := 0
		if e.Reference {
			ref = 1
		}
		fmt.Fprintf(&b, "%016x %d %s\n", e.Checksum, ref, e.Path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create ledger directory"), "path", path)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write dependency ledger"), "path", path)
	}
	return nil
}
