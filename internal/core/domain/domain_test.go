package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/texrun/internal/core/domain"
)

func TestSignal_Membership(t *testing.T) {
	var s domain.Signal
	assert.Equal(t, "NO_ERRORS", s.String())
	assert.False(t, s.Has(domain.Rerun))

	s.Set(domain.UndefCit | domain.Rerun)
	assert.True(t, s.Has(domain.UndefCit))
	assert.True(t, s.Has(domain.UndefCit|domain.Rerun))
	assert.False(t, s.Has(domain.UndefCit|domain.UndefRef))
	assert.True(t, s.Any(domain.UndefCit|domain.UndefRef))
	assert.False(t, s.Failed())

	s.Clear(domain.Rerun)
	assert.False(t, s.Has(domain.Rerun))
	assert.Equal(t, "UNDEF_CIT", s.String())
}

func TestSignal_HasEmpty(t *testing.T) {
	s := domain.TexError
	assert.False(t, s.Has(domain.NoErrors))
}

func TestSignal_Groups(t *testing.T) {
	tests := []struct {
		name    string
		signal  domain.Signal
		failed  bool
		aborted bool
	}{
		{"tex error", domain.TexError, true, false},
		{"latex error", domain.LatexError, true, false},
		{"bibtex error", domain.BibtexError, true, false},
		{"index error", domain.IndexError, true, false},
		{"nonzero exit", domain.NonzeroError, true, false},
		{"warning only", domain.LatexWarning | domain.TexWarning, false, false},
		{"killed", domain.Killed, false, true},
		{"timeout", domain.Timeout, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.failed, tt.signal.Failed())
			assert.Equal(t, tt.aborted, tt.signal.Aborted())
		})
	}
}

func TestSignal_Unsuccessful(t *testing.T) {
	tests := []struct {
		name   string
		signal domain.Signal
		want   bool
	}{
		{"clean", domain.NoErrors, false},
		{"warnings", domain.Warnings | domain.UndefRef, false},
		{"no output", domain.NoOutput, true},
		{"too many errors", domain.TooManyErrors, true},
		{"latex error", domain.LatexError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.signal.Unsuccessful())
		})
	}
	assert.False(t, domain.NoOutput.Failed())
	assert.False(t, domain.TooManyErrors.Failed())
}

func TestSignal_String(t *testing.T) {
	s := domain.NoErrors.With(domain.Timeout).With(domain.LatexWarning)
	assert.Equal(t, "LATEX_WARNING|TIMEOUT", s.String())
	assert.Equal(t, domain.LatexWarning, s.Without(domain.Timeout))
}

func TestAuxInfo_Equal(t *testing.T) {
	a := domain.NewAuxInfo("doc.aux")
	a.Citations["knuth"] = struct{}{}
	a.Databases["refs.bib"] = struct{}{}

	b := domain.NewAuxInfo("doc.aux")
	b.Databases["refs.bib"] = struct{}{}
	b.Citations["knuth"] = struct{}{}

	assert.True(t, a.Equal(b))
	assert.True(t, domain.AuxSnapshotsEqual([]domain.AuxInfo{a}, []domain.AuxInfo{b}))

	b.Citations["lamport"] = struct{}{}
	assert.False(t, a.Equal(b))
	assert.False(t, domain.AuxSnapshotsEqual([]domain.AuxInfo{a}, []domain.AuxInfo{b}))
	assert.False(t, domain.AuxSnapshotsEqual([]domain.AuxInfo{a}, nil))

	c := domain.NewAuxInfo("other.aux")
	assert.False(t, domain.NewAuxInfo("doc.aux").Equal(c))
}

func TestExitStatus(t *testing.T) {
	assert.True(t, domain.ExitStatus{}.OK())
	assert.False(t, domain.ExitStatus{Code: 1}.OK())
	assert.Equal(t, domain.Killed, domain.ExitStatus{Killed: true}.Signal())
	assert.Equal(t, domain.Timeout, domain.ExitStatus{TimedOut: true}.Signal())
	assert.Equal(t, domain.NoErrors, domain.ExitStatus{Code: 3}.Signal())
	assert.True(t, domain.ExitStatus{TimedOut: true}.Aborted())
}

func TestSettings_Backend(t *testing.T) {
	tests := []struct {
		command string
		dep     string
		output  string
	}{
		{"pdflatex -interaction=nonstopmode", ".dep-pdf", ".pdf"},
		{"lualatex", ".dep-pdf", ".pdf"},
		{"xelatex -synctex=1", ".dep-pdf", ".pdf"},
		{"latex", ".dep", ".dvi"},
		{"platex", ".dep", ".dvi"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			s := domain.Settings{LatexCommand: tt.command}
			assert.Equal(t, tt.dep, s.DepExtension())
			assert.Equal(t, tt.output, s.OutputExtension())
		})
	}
}

func TestSettings_Runs(t *testing.T) {
	assert.Equal(t, domain.DefaultMaxRuns, domain.Settings{}.Runs())
	assert.Equal(t, 3, domain.Settings{MaxRuns: 3}.Runs())
}

func TestDiagnostics(t *testing.T) {
	d := domain.NewDiagnostics()
	assert.True(t, d.Empty())

	d.InsertError(12, "Undefined control sequence.", "\\foo", "")
	d.InsertRef(3, "Citation undefined", "knuth", "1_intro.tex")
	assert.Len(t, d.Errors(), 1)
	assert.Len(t, d.Refs(), 1)
	assert.Equal(t, "1_intro.tex", d.Refs()[0].ChildFile)

	d.ClearRefs()
	assert.Empty(t, d.Refs())
	assert.Len(t, d.Errors(), 1)

	d.ClearErrors()
	assert.True(t, d.Empty())
}

func TestIsGeneratedFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/doc/main.tex", false},
		{"/doc/refs.bib", false},
		{"/doc/figures/plot.png", false},
		{"/doc/main.aux", true},
		{"/doc/main.pdf", true},
		{"/doc/main.tex.dep-pdf", true},
		{"/doc/main.synctex.gz", true},
		{"/doc/main.run.xml", true},
		{"/doc/.#main.tex", true},
		{"/doc/main.tex~", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.IsGeneratedFile(tt.path))
		})
	}
}
