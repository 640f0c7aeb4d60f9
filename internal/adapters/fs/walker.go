// Package fs provides file system adapters for walking, hashing and locating files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"slices"
	"strings"
)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields the files under root whose extension is one of exts,
// skipping version control directories. An empty exts yields every file.
func (w *Walker) WalkFiles(root string, exts []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable entries are skipped
			}

			if d.IsDir() {
				if path != root && w.shouldSkipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			if len(exts) > 0 && !slices.Contains(exts, strings.ToLower(filepath.Ext(path))) {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Walker) shouldSkipDir(name string) bool {
	switch name {
	case ".git", ".jj", ".svn":
		return true
	}
	return false
}
