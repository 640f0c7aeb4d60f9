package domain

import (
	"path/filepath"
	"strings"
)

// generatedExtensions are written by the compiler and its tools during a
// build. Changes to them never start a rebuild.
var generatedExtensions = map[string]bool{
	".aux": true, ".log": true, ".dvi": true, ".pdf": true,
	".dep": true, ".dep-pdf": true, ".bbl": true, ".blg": true,
	".bcf": true, ".idx": true, ".ind": true, ".ilg": true,
	".nlo": true, ".nls": true, ".glo": true, ".gls": true,
	".out": true, ".toc": true, ".lof": true, ".lot": true,
	".ent": true, ".fls": true, ".synctex": true, ".gz": true,
	".xml": true, ".prom": true,
}

// IsGeneratedFile reports whether path names a build product or a temporary
// file of the compiler rather than a document source.
func IsGeneratedFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".#") || strings.HasSuffix(base, "~") {
		return true
	}
	return generatedExtensions[strings.ToLower(filepath.Ext(base))]
}
