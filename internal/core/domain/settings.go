package domain

import "strings"

// DefaultMaxRuns bounds the number of compiler invocations per build.
const DefaultMaxRuns = 6

// Language describes the document language as the index processor needs it.
type Language struct {
	// Babel is the babel name, substituted for $$lang.
	Babel string
	// Code is the language code, substituted for $$lcode.
	Code string
	// Xindy is the xindy language name used for $$x.
	Xindy string
}

// Encoding describes the input encoding as the index processor needs it.
type Encoding struct {
	// Iconv is the iconv name of the input encoding ("UTF-8", "ISO-8859-1", ...).
	Iconv string
	// FullUnicode is true for engines reading UTF-8 natively (XeTeX, LuaTeX).
	FullUnicode bool
	// NoInputenc is true when the document loads no inputenc package.
	NoInputenc bool
}

// Settings are the build-wide knobs of one compilation.
type Settings struct {
	LatexCommand      string
	BibtexCommand     string
	IndexCommand      string
	JIndexCommand     string
	SplitIndexCommand string
	NomenclCommand    string

	Language Language
	Encoding Encoding
	Japanese bool

	// Indices lists the index shortcuts when the document has several indices.
	Indices []string
	// MultipleIndices enables splitindex unless Memoir handles the indices.
	MultipleIndices bool
	// Memoir is true when the document class manages its own indices.
	Memoir bool

	// OnlyChildBibs scans only child aux files for bibliography data.
	OnlyChildBibs bool
	// IncludeAll is set when compiling with all children included for reference resolution.
	IncludeAll bool
	// IgnoreMissingGlyphs suppresses "Missing character" errors.
	IgnoreMissingGlyphs bool
	// LegacyNomencl uses the .glo/.gls pair of nomencl versions before 4.
	LegacyNomencl bool

	SearchPath string
	Env        map[string]string
	Wait       WaitPolicy
	MaxRuns    int
	CleanStart bool
}

// PDFBackend reports whether the compiler command writes PDF directly.
func (s Settings) PDFBackend() bool {
	cmd := strings.TrimSpace(s.LatexCommand)
	return strings.HasPrefix(cmd, "pdf") ||
		strings.HasPrefix(cmd, "lualatex") ||
		strings.HasPrefix(cmd, "xelatex")
}

// DepExtension is the extension of the dependency ledger for this backend.
func (s Settings) DepExtension() string {
	if s.PDFBackend() {
		return ".dep-pdf"
	}
	return ".dep"
}

// OutputExtension is the extension of the compiler's output artifact.
func (s Settings) OutputExtension() string {
	if s.PDFBackend() {
		return ".pdf"
	}
	return ".dvi"
}

// Runs returns MaxRuns, or DefaultMaxRuns when unset.
func (s Settings) Runs() int {
	if s.MaxRuns <= 0 {
		return DefaultMaxRuns
	}
	return s.MaxRuns
}
