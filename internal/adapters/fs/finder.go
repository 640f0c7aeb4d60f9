package fs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/texrun/internal/core/ports"
)

var _ ports.FileFinder = (*Finder)(nil)

// Finder locates TeX support files, first next to the document and then
// through kpsewhich.
type Finder struct {
	kpsewhich string
}

// NewFinder creates a Finder using kpsewhich from PATH.
func NewFinder() *Finder {
	return &Finder{kpsewhich: "kpsewhich"}
}

// NewFinderWith creates a Finder using the given kpsewhich binary. An empty
// name disables the TeX installation lookup.
func NewFinderWith(kpsewhich string) *Finder {
	return &Finder{kpsewhich: kpsewhich}
}

// Find returns the absolute path of name, adding "."+format when name has no
// extension. It returns "" when the file cannot be found.
func (f *Finder) Find(ctx context.Context, dir, name, format string) string {
	if name == "" {
		return ""
	}
	if filepath.Ext(name) == "" && format != "" {
		name += "." + format
	}

	local := name
	if !filepath.IsAbs(local) {
		local = filepath.Join(dir, name)
	}
	if info, err := os.Stat(local); err == nil && !info.IsDir() {
		return local
	}

	if f.kpsewhich == "" {
		return ""
	}
	args := []string{name}
	if format != "" {
		args = []string{"-format=" + format, name}
	}
	cmd := exec.CommandContext(ctx, f.kpsewhich, args...) //nolint:gosec // fixed binary, file name argument
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	found := strings.TrimSpace(string(out))
	if found == "" {
		return ""
	}
	if !filepath.IsAbs(found) {
		found = filepath.Join(dir, found)
	}
	return found
}
