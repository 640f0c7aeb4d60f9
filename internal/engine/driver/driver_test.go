package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/texrun/internal/adapters/fs"
	"go.trai.ch/texrun/internal/core/domain"
	"go.trai.ch/texrun/internal/core/ports/mocks"
	"go.trai.ch/texrun/internal/engine/driver"
	"go.uber.org/mock/gomock"
)

const cleanLog = "This is pdfTeX, Version 3.141592653\n(./main.tex\nLaTeX2e <2023-11-01>\n)\nOutput written on main.pdf (1 page, 1234 bytes).\n"

const rerunLog = "(./main.tex\nLaTeX Warning: Label(s) may have changed. Rerun to get cross-references right.\n)\n"

// fakeTeX plays the part of the TeX tools: each handler writes the files its
// tool would write into the document directory.
type fakeTeX struct {
	t        *testing.T
	dir      string
	calls    []string
	handlers map[string]func(run int) domain.ExitStatus
}

func newFakeTeX(t *testing.T, dir string) *fakeTeX {
	t.Helper()
	return &fakeTeX{t: t, dir: dir, handlers: make(map[string]func(int) domain.ExitStatus)}
}

func (f *fakeTeX) run(_ context.Context, inv domain.Invocation) domain.ExitStatus {
	f.calls = append(f.calls, inv.Name)
	h, ok := f.handlers[inv.Name]
	if !ok {
		f.t.Fatalf("unexpected invocation %q", inv.Command)
	}
	return h(f.count(inv.Name))
}

func (f *fakeTeX) count(name string) int {
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeTeX) write(name, content string) {
	f.t.Helper()
	require.NoError(f.t, os.WriteFile(filepath.Join(f.dir, name), []byte(content), 0o600))
}

// latex makes every compiler run write the log produced by logFor, an aux
// file and the PDF.
func (f *fakeTeX) latex(aux string, logFor func(run int) string) {
	f.handlers["latex"] = func(run int) domain.ExitStatus {
		f.write("main.aux", aux)
		f.write("main.log", logFor(run))
		f.write("main.pdf", "%PDF-1.5")
		return domain.ExitStatus{}
	}
}

func always(log string) func(int) string {
	return func(int) string { return log }
}

type fixture struct {
	dir  string
	tex  *fakeTeX
	deps driver.Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.tex"), []byte("\\documentclass{article}"), 0o600))

	ctrl := gomock.NewController(t)
	tex := newFakeTeX(t, dir)

	exec := mocks.NewMockExecutor(ctrl)
	exec.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(tex.run).AnyTimes()

	finder := mocks.NewMockFileFinder(ctrl)
	finder.EXPECT().Find(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, dir, name, _ string) string {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				return ""
			}
			return path
		}).AnyTimes()

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	return &fixture{
		dir: dir,
		tex: tex,
		deps: driver.Deps{
			Exec:   exec,
			Sums:   fs.NewHasher(),
			Finder: finder,
			Logger: logger,
		},
	}
}

func (f *fixture) settings() domain.Settings {
	return domain.Settings{
		LatexCommand:   "pdflatex -interaction=nonstopmode",
		BibtexCommand:  "bibtex",
		IndexCommand:   "makeindex",
		NomenclCommand: "makeindex -s nomencl.ist",
	}
}

func (f *fixture) driver(t *testing.T, settings domain.Settings) *driver.Driver {
	t.Helper()
	d, err := driver.New(driver.Params{Master: "main.tex", Dir: f.dir, Settings: settings}, f.deps)
	require.NoError(t, err)
	return d
}

func (f *fixture) touchMaster(t *testing.T) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "main.tex"), []byte("\\documentclass{book}"), 0o600))
}

func TestNew_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := driver.New(driver.Params{}, f.deps)
	require.ErrorIs(t, err, domain.ErrNoInputFile)

	_, err = driver.New(driver.Params{Master: "notes.md", Dir: f.dir}, f.deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input is not a .tex file")
}

func TestNew_Paths(t *testing.T) {
	f := newFixture(t)

	d := f.driver(t, f.settings())
	assert.Equal(t, filepath.Join(f.dir, "main.tex"), d.Master())
	assert.Equal(t, filepath.Join(f.dir, "main.tex.dep-pdf"), d.DepFile())
	assert.Equal(t, filepath.Join(f.dir, "main.pdf"), d.Output())

	s := f.settings()
	s.LatexCommand = "latex"
	d = f.driver(t, s)
	assert.Equal(t, filepath.Join(f.dir, "main.tex.dep"), d.DepFile())
	assert.Equal(t, filepath.Join(f.dir, "main.dvi"), d.Output())
}

func TestRun_FastPath(t *testing.T) {
	f := newFixture(t)
	f.tex.latex("\\relax\n", always(cleanLog))

	first := f.driver(t, f.settings()).Run(context.Background())
	assert.Equal(t, domain.NoErrors, first.Signals)
	assert.Equal(t, 1, first.Runs)
	require.FileExists(t, filepath.Join(f.dir, "main.tex.dep-pdf"))

	for range 2 {
		res := f.driver(t, f.settings()).Run(context.Background())
		assert.Equal(t, domain.NoChange, res.Signals)
		assert.Zero(t, res.Runs)
	}
	assert.Equal(t, []string{"latex"}, f.tex.calls)
}

func TestRun_RebuildsWhenSourceChanges(t *testing.T) {
	f := newFixture(t)
	f.tex.latex("\\relax\n", always(cleanLog))

	f.driver(t, f.settings()).Run(context.Background())
	f.touchMaster(t)
	res := f.driver(t, f.settings()).Run(context.Background())

	assert.Equal(t, domain.NoErrors, res.Signals)
	assert.Equal(t, 1, res.Runs)
	assert.Equal(t, []string{"latex", "latex"}, f.tex.calls)
}

func TestRun_RebuildsWhenOutputIsMissing(t *testing.T) {
	f := newFixture(t)
	f.tex.latex("\\relax\n", always(cleanLog))

	f.driver(t, f.settings()).Run(context.Background())
	require.NoError(t, os.Remove(filepath.Join(f.dir, "main.pdf")))
	res := f.driver(t, f.settings()).Run(context.Background())

	assert.Equal(t, 1, res.Runs)
}

func TestRun_InvocationBound(t *testing.T) {
	f := newFixture(t)
	f.tex.latex("\\relax\n", always(rerunLog))

	res := f.driver(t, f.settings()).Run(context.Background())

	assert.Equal(t, domain.DefaultMaxRuns, res.Runs)
	assert.Equal(t, domain.DefaultMaxRuns, f.tex.count("latex"))
	assert.True(t, res.Signals.Has(domain.Rerun))
	assert.False(t, res.Signals.Failed())
}

func TestRun_InvocationBoundWithForcedRerun(t *testing.T) {
	f := newFixture(t)
	log := "(./main.tex\nLaTeX Warning: Value of `x' on page 1 undefined.\n" +
		"LaTeX Warning: Label(s) may have changed. Rerun to get cross-references right.\n)\n"
	f.tex.latex("\\relax\n", always(log))

	s := f.settings()
	s.MaxRuns = 3
	res := f.driver(t, s).Run(context.Background())

	assert.Equal(t, 3, res.Runs)
	assert.Equal(t, 3, f.tex.count("latex"))
}

func TestRun_ForcedRerunHappensFirst(t *testing.T) {
	f := newFixture(t)
	f.tex.latex("\\relax\n", func(run int) string {
		if run == 1 {
			return "(./main.tex\nLaTeX Warning: Etaremune labels have changed.\n)\n"
		}
		return cleanLog
	})

	res := f.driver(t, f.settings()).Run(context.Background())

	assert.Equal(t, 2, res.Runs)
	assert.Equal(t, domain.NoErrors, res.Signals)
}

func TestRun_BibliographyRunsWhenCitationsChange(t *testing.T) {
	f := newFixture(t)
	f.tex.write("refs.bib", "@book{knuth, title={TAOCP}}")
	f.tex.latex("\\relax\n\\citation{knuth}\n\\bibdata{refs}\n\\bibstyle{plain}\n", always(cleanLog))
	f.tex.handlers["bibtex"] = func(int) domain.ExitStatus {
		f.tex.write("main.bbl", "\\begin{thebibliography}{1}\\end{thebibliography}")
		f.tex.write("main.blg", "This is BibTeX, Version 0.99d\nDatabase file #1: refs.bib\n")
		return domain.ExitStatus{}
	}

	res := f.driver(t, f.settings()).Run(context.Background())
	assert.Equal(t, domain.NoErrors, res.Signals)
	assert.Equal(t, []string{"latex", "bibtex", "latex"}, f.tex.calls)

	depfile, err := os.ReadFile(filepath.Join(f.dir, "main.tex.dep-pdf"))
	require.NoError(t, err)
	assert.Contains(t, string(depfile), filepath.Join(f.dir, "refs.bib"))

	// same citations: the bibliography is left alone
	f.tex.calls = nil
	f.touchMaster(t)
	res = f.driver(t, f.settings()).Run(context.Background())
	assert.Equal(t, domain.NoErrors, res.Signals)
	assert.Equal(t, []string{"latex"}, f.tex.calls)

	// an edited database reruns it
	f.tex.calls = nil
	f.tex.write("refs.bib", "@book{knuth, title={The Art of Computer Programming}}")
	f.driver(t, f.settings()).Run(context.Background())
	assert.Equal(t, 1, f.tex.count("bibtex"))
}

func TestRun_UndefinedCitationsRunBibliography(t *testing.T) {
	f := newFixture(t)
	f.tex.latex("\\relax\n\\citation{knuth}\n\\bibdata{refs}\n", func(run int) string {
		if run == 1 {
			return "(./main.tex\nLaTeX Warning: Citation `knuth' on page 1 undefined on input line 3.\n)\n"
		}
		return cleanLog
	})
	f.tex.handlers["bibtex"] = func(int) domain.ExitStatus { return domain.ExitStatus{} }

	// the aux file is current, only the log asks for the bibliography
	f.tex.write("main.aux", "\\relax\n\\citation{knuth}\n\\bibdata{refs}\n")

	res := f.driver(t, f.settings()).Run(context.Background())
	assert.Equal(t, domain.NoErrors, res.Signals)
	assert.Equal(t, []string{"latex", "bibtex", "latex"}, f.tex.calls)
}

func TestRun_IncludeAllSkipsBibliography(t *testing.T) {
	f := newFixture(t)
	f.tex.latex("\\relax\n\\citation{knuth}\n\\bibdata{refs}\n", always(cleanLog))

	s := f.settings()
	s.IncludeAll = true
	res := f.driver(t, s).Run(context.Background())

	assert.Equal(t, domain.NoErrors, res.Signals)
	assert.Zero(t, f.tex.count("bibtex"))
}

func TestRun_KilledLeavesDepFileAlone(t *testing.T) {
	f := newFixture(t)
	f.tex.latex("\\relax\n", always(cleanLog))
	f.driver(t, f.settings()).Run(context.Background())

	depfile := filepath.Join(f.dir, "main.tex.dep-pdf")
	before, err := os.ReadFile(depfile)
	require.NoError(t, err)

	f.touchMaster(t)
	f.tex.handlers["latex"] = func(int) domain.ExitStatus { return domain.ExitStatus{Killed: true} }
	res := f.driver(t, f.settings()).Run(context.Background())

	assert.Equal(t, domain.Killed, res.Signals)
	assert.Equal(t, 1, res.Runs)
	after, err := os.ReadFile(depfile)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRun_TimeoutInBibliography(t *testing.T) {
	f := newFixture(t)
	f.tex.latex("\\relax\n\\citation{knuth}\n\\bibdata{refs}\n", always(cleanLog))
	f.tex.handlers["bibtex"] = func(int) domain.ExitStatus { return domain.ExitStatus{TimedOut: true} }

	res := f.driver(t, f.settings()).Run(context.Background())

	assert.Equal(t, domain.Timeout, res.Signals)
	assert.Equal(t, []string{"latex", "bibtex"}, f.tex.calls)
	assert.NoFileExists(t, filepath.Join(f.dir, "main.tex.dep-pdf"))
}

func TestRun_NonzeroExit(t *testing.T) {
	f := newFixture(t)
	f.tex.latex("\\relax\n", always(cleanLog))
	latex := f.tex.handlers["latex"]
	f.tex.handlers["latex"] = func(run int) domain.ExitStatus {
		latex(run)
		return domain.ExitStatus{Code: 1}
	}

	res := f.driver(t, f.settings()).Run(context.Background())

	assert.True(t, res.Signals.Has(domain.NonzeroError))
	assert.True(t, res.Signals.Failed())
}

func TestRun_ErrorsAreReported(t *testing.T) {
	f := newFixture(t)
	f.tex.latex("\\relax\n", always("(./main.tex\n! Undefined control sequence.\nl.7 \\foo\n\n)\n"))

	res := f.driver(t, f.settings()).Run(context.Background())

	assert.True(t, res.Signals.Has(domain.TexError))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 7, res.Errors[0].Line)
}

func TestRun_BibliographyErrorTakesPrecedence(t *testing.T) {
	f := newFixture(t)
	f.tex.latex("\\relax\n\\citation{knuth}\n\\bibdata{missing}\n",
		always("(./main.tex\nOverfull \\hbox (1.0pt too wide) in paragraph at lines 1--2\n)\n"))
	f.tex.handlers["bibtex"] = func(int) domain.ExitStatus {
		f.tex.write("main.blg", "I couldn't open database file missing.bib\n---line 3 of file main.aux\n")
		return domain.ExitStatus{Code: 2}
	}

	res := f.driver(t, f.settings()).Run(context.Background())

	assert.Equal(t, domain.BibtexError, res.Signals)
}

func TestRun_Index(t *testing.T) {
	f := newFixture(t)
	f.tex.latex("\\relax\n", func(run int) string {
		f.tex.write("main.idx", "\\indexentry{foo}{1}\n")
		return cleanLog
	})
	f.tex.handlers["index"] = func(int) domain.ExitStatus {
		f.tex.write("main.ind", "\\begin{theindex}\\end{theindex}")
		f.tex.write("main.ilg", "!! Input index error (file = main.idx, line = 1):\n   -- Extra `@'.\n")
		return domain.ExitStatus{Code: 1}
	}

	res := f.driver(t, f.settings()).Run(context.Background())

	assert.Equal(t, domain.IndexError, res.Signals)
	assert.Equal(t, []string{"latex", "index", "latex"}, f.tex.calls)
}

func TestRun_MemoirIndices(t *testing.T) {
	f := newFixture(t)
	f.tex.latex("\\relax\n", func(int) string {
		f.tex.write("main.idx", "\\indexentry{foo}{1}\n")
		f.tex.write("names.idx", "\\indexentry{Knuth}{1}\n")
		return cleanLog
	})
	f.tex.handlers["index"] = func(int) domain.ExitStatus { return domain.ExitStatus{} }

	s := f.settings()
	s.MultipleIndices = true
	s.Memoir = true
	s.Indices = []string{"idx", "names", "places"}
	res := f.driver(t, s).Run(context.Background())

	assert.Equal(t, domain.NoErrors, res.Signals)
	assert.Equal(t, 2, f.tex.count("index"))
}

func TestRun_Nomenclature(t *testing.T) {
	f := newFixture(t)
	f.tex.latex("\\relax\n", func(int) string {
		f.tex.write("main.nlo", "\\nomenclature{$c$}{speed of light}\n")
		return "(./main.tex\nWriting nomenclature file main.nlo\n)\n"
	})
	f.tex.handlers["nomencl"] = func(int) domain.ExitStatus {
		f.tex.write("main.nls", "\\begin{thenomenclature}\\end{thenomenclature}")
		return domain.ExitStatus{}
	}

	res := f.driver(t, f.settings()).Run(context.Background())

	assert.Equal(t, domain.NoErrors, res.Signals)
	assert.Equal(t, 1, f.tex.count("nomencl"))
	assert.Equal(t, "latex", f.tex.calls[len(f.tex.calls)-1])
}

func TestRun_EmptyNomenclatureCountsAsChanged(t *testing.T) {
	f := newFixture(t)
	f.tex.latex("\\relax\n", func(int) string {
		f.tex.write("main.nlo", "")
		return "(./main.tex\nWriting nomenclature file main.nlo\n)\n"
	})
	f.tex.handlers["nomencl"] = func(int) domain.ExitStatus { return domain.ExitStatus{} }

	f.driver(t, f.settings()).Run(context.Background())

	assert.Equal(t, 1, f.tex.count("nomencl"))
}

func TestRemoveAuxiliaryFiles(t *testing.T) {
	f := newFixture(t)
	generated := []string{"main.aux", "main.bbl", "main.bcf", "main.ind", "main.nls", "main.ent", "main.out", "main.pdf", "main.tex.dep-pdf"}
	for _, name := range generated {
		f.tex.write(name, "x")
	}
	f.tex.write("main.log", "kept")

	s := f.settings()
	s.CleanStart = true
	f.driver(t, s)

	for _, name := range generated {
		assert.NoFileExists(t, filepath.Join(f.dir, name))
	}
	assert.FileExists(t, filepath.Join(f.dir, "main.log"))
	assert.FileExists(t, filepath.Join(f.dir, "main.tex"))
}

func TestRun_ChildErrorsAreAttributed(t *testing.T) {
	f := newFixture(t)
	f.tex.write("1_intro.tex", "\\foo")
	f.tex.latex("\\relax\n", always(strings.Join([]string{
		"(./main.tex",
		"(./1_intro.tex",
		"! Undefined control sequence.",
		"l.1 \\foo",
		"",
		")",
		")",
	}, "\n")))

	res := f.driver(t, f.settings()).Run(context.Background())

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "1_intro.tex", res.Errors[0].ChildFile)
}

func TestRun_NewBiberControlFileRunsBibliography(t *testing.T) {
	f := newFixture(t)
	log := "(./main.tex\n\\openout1 = `main.bcf'.\n\n)\nOutput written on main.pdf (1 page, 1234 bytes).\n"
	f.tex.latex("\\relax\n", func(int) string {
		f.tex.write("main.bcf", "<bcf:controlfile version=\"3.10\"/>")
		return log
	})
	f.tex.handlers["bibtex"] = func(int) domain.ExitStatus {
		f.tex.write("main.bbl", "\\refsection{0}\\endrefsection")
		f.tex.write("main.blg", "[0] Config.pm:307> INFO - This is Biber 2.19\n")
		return domain.ExitStatus{}
	}

	res := f.driver(t, f.settings()).Run(context.Background())

	assert.False(t, res.Signals.Failed())
	assert.Equal(t, 1, f.tex.count("bibtex"))
	assert.Equal(t, "latex", f.tex.calls[len(f.tex.calls)-1])

	// an unchanged control file leaves the bibliography alone
	f.tex.calls = nil
	f.touchMaster(t)
	f.driver(t, f.settings()).Run(context.Background())
	assert.Zero(t, f.tex.count("bibtex"))
}
