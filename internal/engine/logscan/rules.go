package logscan

import (
	"strings"

	"go.trai.ch/texrun/internal/core/domain"
)

// rule pairs a line predicate with its handler. Rules are tried in order and
// the first match handles the line.
type rule struct {
	name   string
	match  func(s *Scanner, line string) bool
	handle func(s *Scanner, line string)
}

var lineRules []rule

// warningRules classify a "LaTeX Warning:" line.
var warningRules []rule

func init() {
	lineRules = []rule{
		{"latex warning", isLatexWarning, handleLatexWarning},
		{"package warning", prefix("Package"), handlePackageWarning},
		{"lettre warning", prefix("LETTRE WARNING:"), handleLettreWarning},
		{"parenthesised", isParenthesised, handleParenthesised},
		{"tex error", isTeXError, handleTeXError},
		{"informational", always, handleInformational},
	}

	warningRules = []rule{
		{"rerun cross-references", contains("Rerun to get cross-references"), flag(domain.Rerun)},
		// clefval needs two passes before the bibliography
		{"clefval value", containsAll("Value of", "on page", "undefined"), flag(domain.ErrorRerun)},
		{"etaremune labels", contains("Etaremune labels have changed"), flag(domain.ErrorRerun)},
		{"enotez endnotes", contains("Endnotes may have changed. Rerun"), flag(domain.Rerun)},
		{"citation undefined", citationUndefined, handleCitationUndefined},
		{"reference start", referenceStart, handleReferenceStart},
		{"reference continued", referencePending, func(*Scanner, string) {}},
		{"reference complete", referenceComplete, handleReferenceComplete},
		{"reference undefined", containsAll("Reference `", "on input line", "undefined"), handleReferenceUndefined},
		{"undefined references", undefinedReferences, handleUndefinedReferences},
	}
}

func always(*Scanner, string) bool { return true }

func prefix(p string) func(*Scanner, string) bool {
	return func(_ *Scanner, line string) bool { return strings.HasPrefix(line, p) }
}

func contains(sub string) func(*Scanner, string) bool {
	return func(_ *Scanner, line string) bool { return strings.Contains(line, sub) }
}

func containsAll(subs ...string) func(*Scanner, string) bool {
	return func(_ *Scanner, line string) bool {
		for _, sub := range subs {
			if !strings.Contains(line, sub) {
				return false
			}
		}
		return true
	}
}

func flag(f domain.Signal) func(*Scanner, string) {
	return func(s *Scanner, _ string) { s.set(f) }
}

func isLatexWarning(s *Scanner, line string) bool {
	return strings.HasPrefix(line, "LaTeX Warning:") ||
		strings.HasPrefix(line, "! pdfTeX warning") ||
		strings.HasPrefix(s.pending, "LaTeX Warning:") ||
		strings.HasPrefix(s.pending, "! pdfTeX warning")
}

func handleLatexWarning(s *Scanner, line string) {
	s.set(domain.LatexWarning)
	for _, r := range warningRules {
		if r.match(s, line) {
			r.handle(s, line)
			return
		}
	}
}

func citationUndefined(s *Scanner, line string) bool {
	return !s.opts.IncludeAll &&
		strings.Contains(line, "Citation") &&
		strings.Contains(line, "undefined")
}

func handleCitationUndefined(s *Scanner, line string) {
	s.set(domain.UndefCit)
	s.diag.InsertRef(lineNumber(line), "Citation undefined", line, s.child())
}

// A reference warning with a long label is wrapped over several lines. The
// first line starts collecting; the warning is handled once "on input line"
// has been seen.
func referenceStart(_ *Scanner, line string) bool {
	return strings.Contains(line, "Reference `") && !strings.Contains(line, "on input line")
}

func handleReferenceStart(s *Scanner, line string) {
	s.pending = line
}

func referencePending(s *Scanner, _ string) bool {
	return s.pending != "" &&
		strings.Contains(s.pending, "Reference `") &&
		!strings.Contains(s.pending, "on input line")
}

func referenceComplete(s *Scanner, _ string) bool {
	return s.pending != "" &&
		strings.Contains(s.pending, "Reference `") &&
		strings.Contains(s.pending, "on input line")
}

func handleReferenceComplete(s *Scanner, _ string) {
	warning := s.pending
	s.pending = ""
	if !strings.Contains(warning, "undefined") {
		return
	}
	s.undefinedReference(warning)
}

func handleReferenceUndefined(s *Scanner, line string) {
	s.undefinedReference(line)
}

func (s *Scanner) undefinedReference(warning string) {
	if m := reUndefRef.FindStringSubmatch(warning); m != nil {
		if s.opts.Labels == nil || !s.opts.Labels.HasLabel(m[1]) {
			s.diag.InsertRef(lineNumber(warning), "Reference undefined", warning, s.child())
			s.set(domain.UndefUnknownRef)
		}
	}
	s.set(domain.UndefRef)
}

func undefinedReferences(s *Scanner, line string) bool {
	return !s.opts.IncludeAll && strings.Contains(line, "There were undefined references.")
}

func handleUndefinedReferences(s *Scanner, _ string) {
	if !s.res.Signals.Has(domain.UndefCit) {
		s.set(domain.UndefRef)
	}
}

func handlePackageWarning(s *Scanner, line string) {
	s.set(domain.PackageWarning)
	switch {
	case strings.Contains(line, "natbib Warning:"):
		if !s.opts.IncludeAll &&
			strings.Contains(line, "Citation") &&
			strings.Contains(line, "on page") &&
			strings.Contains(line, "undefined") {
			s.set(domain.UndefCit)
			s.diag.InsertRef(lineNumber(line), "Citation undefined", line, s.child())
		}
	case !s.opts.IncludeAll && strings.Contains(line, "run BibTeX"):
		s.set(domain.UndefCit)
	case !s.opts.IncludeAll && strings.Contains(line, "run Biber"):
		s.set(domain.UndefCit)
		s.res.Biber = true
	case strings.Contains(line, "Rerun LaTeX"),
		strings.Contains(line, "Please rerun LaTeX"),
		strings.Contains(line, "Rerun to get"):
		s.set(domain.Rerun)
	}
}

func handleLettreWarning(s *Scanner, line string) {
	if strings.Contains(line, "veuillez recompiler") {
		s.set(domain.Rerun)
	}
}

func isParenthesised(_ *Scanner, line string) bool {
	return strings.HasPrefix(line, "(")
}

// handleParenthesised catches continuation lines such as
// "(natbib) Rerun to get citations correct.".
func handleParenthesised(s *Scanner, line string) {
	switch {
	case strings.Contains(line, "Rerun LaTeX"), strings.Contains(line, "Rerun to get"):
		s.set(domain.Rerun)
	case strings.Contains(line, "That makes 100 errors"):
		s.set(domain.TooManyErrors)
	}
}

func isTeXError(s *Scanner, line string) bool {
	if strings.HasPrefix(line, "! ") {
		return true
	}
	return s.fileLineError &&
		reFileLineError.MatchString(line) &&
		!strings.Contains(line, "pdfTeX warning")
}

func handleTeXError(s *Scanner, line string) {
	desc := line
	if strings.HasPrefix(line, "! ") {
		desc = line[2:]
	}

	preamble := false
	if strings.Contains(line, "LaTeX Error:") {
		s.set(domain.LatexError)
		if strings.Contains(line, `Missing \begin{document}`) {
			preamble = true
		}
	}

	switch {
	case strings.HasPrefix(line, `! File ended while scanning use of \Hy@setref@link.`):
		// hyperref was toggled; another pass clears it
		s.set(domain.ErrorRerun)
	case strings.HasPrefix(line, "! File ended while scanning"),
		strings.HasPrefix(line, `! Incomplete \if`):
		// not an error yet: wait for an emergency stop
		s.waitForError = desc
		return
	case strings.HasPrefix(line, `! Paragraph ended before \Hy@setref@link was complete.`):
		s.set(domain.ErrorRerun)
	}

	if s.waitForError != "" && strings.HasPrefix(line, "! Emergency stop.") {
		s.emergencyStop()
	}

	// Find the "l.<n>" line, collecting what comes before it: for errors in
	// the preamble that is where the offending command is shown.
	var tmp, intermediate string
	for count := 0; ; {
		next, ok := s.src.Next()
		if !ok {
			tmp = ""
			break
		}
		tmp = next
		if strings.HasPrefix(tmp, "l.") {
			break
		}
		intermediate += tmp
		if count++; count > maxErrorContextLines {
			break
		}
	}
	if !strings.HasPrefix(tmp, "l.") {
		return
	}

	s.set(domain.TexError)
	if strings.Contains(desc, "Package babel Error: You haven't defined the language") ||
		strings.Contains(desc, "Package babel Error: You haven't loaded the option") ||
		strings.Contains(desc, "Package babel Error: Unknown language") {
		s.set(domain.ErrorRerun)
	}

	lineNo := leadingInt(tmp[2:])
	text := ""
	if i := strings.IndexByte(tmp, ' '); i >= 0 {
		text = tmp[i:]
	}
	if strings.HasSuffix(text, `\begin{document}`) {
		text = intermediate
		preamble = true
	}
	text += "\n"

	for !strings.Contains(text, "l.") {
		next := s.peek()
		if next == "" || strings.HasPrefix(next, "! ") || strings.Contains(next, "(job aborted") {
			break
		}
		s.next()
		text += next + "\n"
	}
	if preamble {
		text += "\n" + preambleNote
	}

	s.recordTeXError(lineNo, desc, text)
}

func (s *Scanner) emergencyStop() {
	s.set(domain.LatexError)
	text := s.waitForError
	s.waitForError = ""
	for count := 0; ; {
		next, ok := s.src.Next()
		if !ok {
			break
		}
		text += "\n" + next
		if count++; count > maxEmergencyLines {
			break
		}
		if strings.Contains(next, "(job aborted") {
			break
		}
	}
	s.diag.InsertError(0, "Emergency stop", text, s.child())
}

func (s *Scanner) recordTeXError(line int, desc, text string) {
	if line == s.lastErrorLine {
		s.sameLineCount++
	} else {
		s.sameLineCount = 1
		s.lastErrorLine = line
	}
	s.res.ErrorCount++
	if s.sameLineCount <= maxSameLineErrors {
		s.diag.InsertError(line, desc, text, s.child())
	}
}

func handleInformational(s *Scanner, line string) {
	switch {
	case strings.HasPrefix(line, "Overfull "), strings.HasPrefix(line, "Underfull "):
		s.set(domain.TexWarning)
	case !s.opts.IncludeAll && strings.Contains(line, "Rerun to get citations"):
		s.set(domain.UndefCit)
	case strings.Contains(line, "No pages of output"), strings.Contains(line, "no pages of output"):
		s.set(domain.NoOutput)
	case strings.Contains(line, "Error 256 (driver return code)"):
		// xdvipdfmx failed; only an error if no output was written
		if s.opts.OutputFile == "" || !fileExists(s.opts.OutputFile) {
			s.set(domain.NoOutput)
		}
	case strings.Contains(line, "That makes 100 errors"):
		s.set(domain.TooManyErrors)
	case strings.HasPrefix(line, "!pdfTeX error:"):
		s.set(domain.TexError)
		s.diag.InsertError(0, "pdfTeX Error", line, s.child())
	case !s.opts.IgnoreMissingGlyphs &&
		strings.HasPrefix(line, "Missing character: There is no ") &&
		!strings.Contains(line, "nullfont"):
		// zero width non-joiner is missing from most fonts and harmless
		if !strings.ContainsRune(line, '\u200c') && !strings.Contains(line, "U+200C") {
			s.set(domain.LatexError)
			s.diag.InsertError(0, "Missing glyphs!", line, s.child())
		}
	case s.waitForError != "":
		s.waitForError += line + "\n"
	}
}
