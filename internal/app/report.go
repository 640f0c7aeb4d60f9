package app

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/texrun/internal/adapters/logger" //nolint:depguard // shared terminal profile
	"go.trai.ch/texrun/internal/core/domain"
)

const (
	colorGreen  = "#22A06B"
	colorRed    = "#D93025"
	colorYellow = "#F59E0B"
	colorSlate  = "#667085"
)

// Report prints the outcome of a build for humans.
type Report struct {
	out *termenv.Output
}

// NewReport creates a Report writing to w.
func NewReport(w io.Writer) *Report {
	return &Report{out: logger.NewOutput(w)}
}

// Print writes a summary line for master followed by the error and
// undefined reference records of result.
func (r *Report) Print(master string, result domain.Result) error {
	name := filepath.Base(master)

	var b strings.Builder
	b.WriteString(r.header(name, result) + "\n")

	for _, rec := range result.Errors {
		b.WriteString("  " + location(name, rec) + ": " + rec.Description + "\n")
		for _, line := range strings.Split(rec.Text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				b.WriteString("      " + line + "\n")
			}
		}
	}
	for _, rec := range result.Refs {
		warning := r.out.String("! " + location(name, rec) + ": " + rec.Description).
			Foreground(r.out.Color(colorYellow))
		b.WriteString("  " + warning.String() + "\n")
	}

	if rest := result.Signals.Without(domain.NoChange); rest != domain.NoErrors {
		signals := r.out.String("signals: " + rest.String()).Foreground(r.out.Color(colorSlate))
		b.WriteString("  " + signals.String() + "\n")
	}

	_, err := r.out.WriteString(b.String())
	return err
}

func (r *Report) header(name string, result domain.Result) string {
	var icon, text, color string
	switch {
	case result.Signals.Aborted():
		icon, color = "✗", colorRed
		text = name + " aborted"
	case result.Signals.Unsuccessful():
		icon, color = "✗", colorRed
		text = fmt.Sprintf("%s failed after %s", name, plural(result.Runs, "run"))
	case result.Signals.Has(domain.NoChange):
		icon, color = "~", colorSlate
		text = name + " is up to date"
	default:
		icon, color = "✓", colorGreen
		text = fmt.Sprintf("%s built in %s", name, plural(result.Runs, "run"))
	}
	return r.out.String(icon + " " + text).Foreground(r.out.Color(color)).String()
}

// location renders "file:line" for a record; the line is left out when unknown.
func location(master string, rec domain.ErrorRecord) string {
	file := master
	if rec.ChildFile != "" {
		file = rec.ChildFile
	}
	if rec.Line > 0 {
		return file + ":" + strconv.Itoa(rec.Line)
	}
	return file
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
