package domain

import "strings"

// Signal is a set of conditions reported by a compilation step. Each named
// constant is a single flag; callers test membership with Has and Any.
type Signal uint32

const (
	// NoErrors is the empty set.
	NoErrors Signal = 0

	// NoChange means the dependency ledger showed nothing changed and no tool ran.
	NoChange Signal = 1 << iota
	// NoOutput means the compiler produced no pages.
	NoOutput
	// UndefRef means the log reported undefined references.
	UndefRef
	// UndefCit means the log reported undefined citations.
	UndefCit
	// UndefUnknownRef means an undefined reference names a label unknown to the document.
	UndefUnknownRef
	// Rerun means the log asked for another compiler pass.
	Rerun
	// ErrorRerun means an error was reported that another pass is expected to resolve.
	ErrorRerun
	// TexError is a primitive TeX error ("! ..." followed by "l.<n>").
	TexError
	// TexWarning is an overfull or underfull box.
	TexWarning
	// LatexError is a LaTeX-level error.
	LatexError
	// LatexWarning is a "LaTeX Warning:" line.
	LatexWarning
	// PackageWarning is a "Package ..." warning line.
	PackageWarning
	// TooManyErrors means the compiler gave up after 100 errors.
	TooManyErrors
	// BibtexError is an error reported by the bibliography processor.
	BibtexError
	// IndexError is an error reported by the index processor.
	IndexError
	// NonzeroError means the last compiler invocation exited with a non-zero status.
	NonzeroError
	// Killed means an external invocation was cancelled.
	Killed
	// Timeout means an external invocation exceeded its time limit.
	Timeout
)

// Errors groups the signals that make a result count as failed.
const Errors = TexError | LatexError | NonzeroError | BibtexError | IndexError

// Failures groups the signals that make a build unsuccessful for its
// caller: every error, plus a run that produced no pages or gave up.
const Failures = Errors | NoOutput | TooManyErrors

// Warnings groups the warning signals.
const Warnings = TexWarning | LatexWarning | PackageWarning

var signalNames = []struct {
	flag Signal
	name string
}{
	{NoChange, "NO_CHANGE"},
	{NoOutput, "NO_OUTPUT"},
	{UndefRef, "UNDEF_REF"},
	{UndefCit, "UNDEF_CIT"},
	{UndefUnknownRef, "UNDEF_UNKNOWN_REF"},
	{Rerun, "RERUN"},
	{ErrorRerun, "ERROR_RERUN"},
	{TexError, "TEX_ERROR"},
	{TexWarning, "TEX_WARNING"},
	{LatexError, "LATEX_ERROR"},
	{LatexWarning, "LATEX_WARNING"},
	{PackageWarning, "PACKAGE_WARNING"},
	{TooManyErrors, "TOO_MANY_ERRORS"},
	{BibtexError, "BIBTEX_ERROR"},
	{IndexError, "INDEX_ERROR"},
	{NonzeroError, "NONZERO_ERROR"},
	{Killed, "KILLED"},
	{Timeout, "TIMEOUT"},
}

// Has reports whether every flag in want is set.
func (s Signal) Has(want Signal) bool {
	return want != 0 && s&want == want
}

// Any reports whether at least one flag in want is set.
func (s Signal) Any(want Signal) bool {
	return s&want != 0
}

// With returns s with the given flags added.
func (s Signal) With(flags Signal) Signal {
	return s | flags
}

// Without returns s with the given flags removed.
func (s Signal) Without(flags Signal) Signal {
	return s &^ flags
}

// Set adds the given flags in place.
func (s *Signal) Set(flags Signal) {
	*s |= flags
}

// Clear removes the given flags in place.
func (s *Signal) Clear(flags Signal) {
	*s &^= flags
}

// Failed reports whether any error flag is set.
func (s Signal) Failed() bool {
	return s.Any(Errors)
}

// Unsuccessful reports whether any failure flag is set.
func (s Signal) Unsuccessful() bool {
	return s.Any(Failures)
}

// Aborted reports whether an invocation was killed or timed out.
func (s Signal) Aborted() bool {
	return s.Any(Killed | Timeout)
}

// Names returns the names of the set flags in declaration order.
func (s Signal) Names() []string {
	var names []string
	for _, sn := range signalNames {
		if s&sn.flag != 0 {
			names = append(names, sn.name)
		}
	}
	return names
}

// String returns the flags joined by "|", or "NO_ERRORS" for the empty set.
func (s Signal) String() string {
	if s == NoErrors {
		return "NO_ERRORS"
	}
	return strings.Join(s.Names(), "|")
}
