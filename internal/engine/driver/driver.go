// Package driver runs a LaTeX document to a converged build.
//
// A Driver invokes the compiler, reads its log, and decides from the signals
// in the log and from a checksum ledger of every file the build touched
// whether the bibliography, index and nomenclature processors have to run and
// how many more compiler passes are needed. An unchanged document with an
// existing output is not compiled at all.
package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/texrun/internal/core/domain"
	"go.trai.ch/texrun/internal/core/ports"
	"go.trai.ch/texrun/internal/engine/auxscan"
	"go.trai.ch/texrun/internal/engine/deplog"
	"go.trai.ch/texrun/internal/engine/deptable"
	"go.trai.ch/texrun/internal/engine/logscan"
	"go.trai.ch/texrun/internal/engine/tools"
	"go.trai.ch/zerr"
)

const indexProcessorMessage = "The index processor did not run successfully. " +
	"Check the output of the index processor for details."

// Params describe the document to build.
type Params struct {
	// Master is the master .tex file, absolute or relative to Dir.
	Master string
	// Dir is the directory the tools run in. Defaults to the directory of Master.
	Dir      string
	Settings domain.Settings
}

// Deps are the collaborators of a Driver.
type Deps struct {
	Exec   ports.Executor
	Sums   ports.Checksummer
	Finder ports.FileFinder
	// Labels is optional; without it every undefined reference is reported.
	Labels ports.LabelIndex
	Logger ports.Logger
}

// Driver builds one master document. A Driver is not safe for concurrent use.
type Driver struct {
	settings domain.Settings
	deps     Deps

	dir     string
	master  string
	base    string
	depfile string
	output  string

	env     tools.Env
	bib     *tools.Bibliography
	index   *tools.Index
	nomencl *tools.Nomenclature
	scanner *logscan.Scanner

	// per-run state
	diag       *domain.Diagnostics
	runs       int
	last       domain.ExitStatus
	biber      bool
	children   []string
	childNames map[string]struct{}
}

// New creates a Driver. When the settings ask for a clean start, the
// auxiliary files of previous builds are removed right away.
func New(params Params, deps Deps) (*Driver, error) {
	if params.Master == "" {
		return nil, domain.ErrNoInputFile
	}
	if !strings.EqualFold(filepath.Ext(params.Master), ".tex") {
		return nil, zerr.With(domain.ErrNotTeXFile, "file", params.Master)
	}

	master := params.Master
	dir := params.Dir
	if !filepath.IsAbs(master) {
		if dir == "" {
			abs, err := filepath.Abs(master)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to resolve master file"), "file", master)
			}
			master = abs
		} else {
			master = filepath.Join(dir, master)
		}
	}
	if dir == "" {
		dir = filepath.Dir(master)
	}

	d := &Driver{
		settings: params.Settings,
		deps:     deps,
		dir:      dir,
		master:   master,
		base:     strings.TrimSuffix(master, filepath.Ext(master)),
		depfile:  master + params.Settings.DepExtension(),
	}
	d.output = d.base + params.Settings.OutputExtension()

	d.env = tools.Env{Exec: deps.Exec, Logger: deps.Logger, Dir: dir, Settings: params.Settings}
	d.bib = tools.NewBibliography(d.env, deps.Finder, master)
	d.index = tools.NewIndex(d.env)
	d.nomencl = tools.NewNomenclature(d.env, master)
	d.scanner = logscan.New(logscan.Options{
		MasterFile:          filepath.Base(master),
		OutputFile:          d.output,
		IncludeAll:          params.Settings.IncludeAll,
		IgnoreMissingGlyphs: params.Settings.IgnoreMissingGlyphs,
		Labels:              deps.Labels,
	})

	if params.Settings.CleanStart {
		d.RemoveAuxiliaryFiles()
	}
	return d, nil
}

// Master returns the absolute path of the master file.
func (d *Driver) Master() string { return d.master }

// DepFile returns the path of the dependency ledger.
func (d *Driver) DepFile() string { return d.depfile }

// Output returns the path of the output artifact.
func (d *Driver) Output() string { return d.output }

// RemoveAuxiliaryFiles deletes the dependency ledger, the generated files
// that can hold the cause of an error, and the output artifact. The next Run
// then compiles from scratch.
func (d *Driver) RemoveAuxiliaryFiles() {
	d.deps.Logger.Debug("removing auxiliary files", "master", d.master)

	nomencl := ".nls"
	if d.settings.LegacyNomencl {
		nomencl = ".gls"
	}
	files := []string{d.depfile, d.output}
	for _, ext := range []string{".bbl", ".bcf", ".ind", nomencl, ".ent", ".aux", ".out"} {
		files = append(files, d.base+ext)
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			d.deps.Logger.Warn("failed to remove auxiliary file", "file", f, "error", err)
		}
	}
}

func (d *Driver) aborted(status domain.ExitStatus) domain.Result {
	d.deps.Logger.Warn("build aborted", "killed", status.Killed, "timed_out", status.TimedOut)
	return d.result(status.Signal())
}

func (d *Driver) result(sig domain.Signal) domain.Result {
	return domain.Result{
		Signals: sig,
		Errors:  d.diag.Errors(),
		Refs:    d.diag.Refs(),
		Runs:    d.runs,
	}
}

// compile runs the compiler once and reports whether the build must stop.
func (d *Driver) compile(ctx context.Context) bool {
	d.runs++
	d.deps.Logger.Info("running compiler", "run", d.runs, "file", filepath.Base(d.master))
	d.last = d.deps.Exec.Run(ctx, domain.Invocation{
		Name:       "latex",
		Command:    d.settings.LatexCommand + " " + tools.Quote(filepath.Base(d.master)),
		Dir:        d.dir,
		SearchPath: d.settings.SearchPath,
		Env:        d.settings.Env,
		Wait:       d.settings.Wait,
	})
	return d.last.Aborted()
}

func (d *Driver) scanLog() domain.Signal {
	res := d.scanner.ScanFile(d.base+".log", d.diag)
	d.biber = d.biber || res.Biber
	for _, c := range res.Children {
		if _, ok := d.childNames[c]; !ok {
			d.childNames[c] = struct{}{}
			d.children = append(d.children, c)
		}
	}
	if res.ErrorCount > 0 {
		d.deps.Logger.Debug("compiler reported errors", "count", res.ErrorCount)
	}
	return res.Signals
}

func (d *Driver) scanAux() []domain.AuxInfo {
	return auxscan.ScanAll(d.base+".aux", d.settings.OnlyChildBibs, d.children)
}

func (d *Driver) extractDeps(table *deptable.Table) {
	deplog.New(table, d.dir, d.master).ExtractFile(d.base + ".log")
}

func (d *Driver) canRun() bool {
	return d.runs < d.settings.Runs()
}

// Run builds the document and returns the signals of the build together
// with the diagnostics collected on the way.
func (d *Driver) Run(ctx context.Context) domain.Result {
	d.diag = domain.NewDiagnostics()
	d.runs = 0
	d.last = domain.ExitStatus{}
	d.biber = false
	d.children = nil
	d.childNames = make(map[string]struct{})

	table := deptable.New(d.deps.Sums)
	var scan, bscan, iscan domain.Signal
	rerun := false
	runBib := false

	hadDepfile := table.Load(d.depfile)
	if hadDepfile {
		if d.settings.IncludeAll {
			// the master always changes in this mode
			table.Remove(d.master)
		}
		table.Update()
		switch {
		case !fileExists(d.output):
			d.deps.Logger.Debug("output is missing, compiling", "output", d.output)
		case !table.SumChange():
			d.deps.Logger.Info("document is up to date", "file", filepath.Base(d.master))
			return d.result(domain.NoChange)
		default:
			d.deps.Logger.Debug("dependencies changed, compiling")
		}
		if table.ExtChanged(".bib") || table.ExtChanged(".bst") {
			runBib = true
		}
	}

	// scanned before the first pass: a previous build with another backend
	// may have left an up to date bibliography
	var before []domain.AuxInfo
	if !runBib {
		before = d.scanAux()
	}

	if d.compile(ctx) {
		return d.aborted(d.last)
	}
	scan = d.scanLog()
	if scan.Has(domain.ErrorRerun) && d.canRun() {
		d.deps.Logger.Debug("log asks for another pass before anything else")
		d.diag.ClearErrors()
		if d.compile(ctx) {
			return d.aborted(d.last)
		}
		scan = d.scanLog()
	}

	infos := d.scanAux()
	if !runBib && !domain.AuxSnapshotsEqual(before, infos) {
		runBib = true
	}

	d.extractDeps(table)
	table.Update()

	// Nomenclature input is recorded now and processed once pagination has
	// settled. An emptied .nlo checksums like a missing one.
	nlo := d.base + ".nlo"
	runNomencl := table.HasChanged(nlo) || isEmptyFile(nlo)
	runNomenclGlo := d.settings.LegacyNomencl && table.HasChanged(d.base+".glo")

	bcf := d.base + ".bcf"
	d.biber = d.biber || table.Exists(bcf)
	// biber writes nothing to the aux file; a new or changed control file
	// is its only sign of changed citations
	if table.HasChanged(bcf) {
		runBib = true
	}

	if !d.settings.IncludeAll && (scan.Has(domain.UndefCit) || runBib) {
		ran, status := d.runBibliography(ctx, table, infos, &bscan)
		if status.Aborted() {
			return d.aborted(status)
		}
		rerun = rerun || ran
	} else if !hadDepfile {
		// another backend may have run the bibliography already; its
		// inputs still belong in this ledger
		d.bib.UpdateDependencies(ctx, table, infos, d.biber)
	}

	for (rerun || table.SumChange() || scan.Has(domain.Rerun)) && d.canRun() {
		rerun = false
		d.diag.ClearErrors()
		if d.compile(ctx) {
			return d.aborted(d.last)
		}
		scan = d.scanLog()
		d.extractDeps(table)
		table.Update()
	}

	// complex styles need a second bibliography pass
	if !d.settings.IncludeAll && scan.Has(domain.UndefCit) {
		ran, status := d.runBibliography(ctx, table, infos, &bscan)
		if status.Aborted() {
			return d.aborted(status)
		}
		rerun = rerun || ran
	}

	// Citations resolve only after further passes, and memoir starts with
	// an empty index. Both have to settle before the index is built.
	idx := d.base + ".idx"
	if runBib || scan.Has(domain.UndefCit) || isEmptyFile(idx) {
		for (table.SumChange() || rerun || scan.Any(domain.Rerun|domain.UndefCit)) && d.canRun() {
			rerun = false
			d.diag.ClearErrors()
			if d.compile(ctx) {
				return d.aborted(d.last)
			}
			scan = d.scanLog()
			table.Update()
		}
	}

	if fileExists(idx) {
		sig, status := d.runIndex(ctx, filepath.Base(idx))
		if status.Aborted() {
			return d.aborted(status)
		}
		iscan.Set(sig)
		rerun = true
	}
	if d.settings.MultipleIndices && d.settings.Memoir {
		for _, shortcut := range d.settings.Indices {
			if shortcut == "idx" {
				continue
			}
			name := shortcut + ".idx"
			if !fileExists(filepath.Join(d.dir, name)) {
				continue
			}
			sig, status := d.runIndex(ctx, name)
			if status.Aborted() {
				return d.aborted(status)
			}
			iscan.Set(sig)
			rerun = true
		}
	}
	if runNomencl {
		if status := d.nomencl.Run(ctx, ".nlo", ".nls"); status.Aborted() {
			return d.aborted(status)
		}
		rerun = true
	}
	if runNomenclGlo {
		if status := d.nomencl.Run(ctx, ".glo", ".gls"); status.Aborted() {
			return d.aborted(status)
		}
		rerun = true
	}

	for (table.SumChange() || rerun || scan.Has(domain.Rerun)) && d.canRun() {
		rerun = false
		d.diag.ClearErrors()
		if d.compile(ctx) {
			return d.aborted(d.last)
		}
		scan = d.scanLog()
		table.Update()
	}

	if err := table.Save(d.depfile); err != nil {
		d.deps.Logger.Error(err)
	}

	if d.last.Code != 0 {
		scan.Set(domain.NonzeroError)
	}

	switch {
	case bscan.Any(domain.Errors):
		return d.result(bscan)
	case iscan.Any(domain.Errors):
		return d.result(iscan)
	default:
		return d.result(scan)
	}
}

// runBibliography refreshes the bibliography dependencies, runs the
// processor and, when it wrote a log, replaces *scan with the log's signals.
func (d *Driver) runBibliography(ctx context.Context, table *deptable.Table, infos []domain.AuxInfo, scan *domain.Signal) (bool, domain.ExitStatus) {
	d.deps.Logger.Info("running bibliography processor", "biber", d.biber)
	d.bib.UpdateDependencies(ctx, table, infos, d.biber)

	ran, status := d.bib.Run(ctx, infos, d.biber)
	if status.Aborted() {
		return ran, status
	}
	if blg := d.bib.BlgFile(); fileExists(blg) {
		*scan = tools.ScanBlg(blg, deplog.New(table, d.dir, d.master), d.diag)
	}
	return ran, status
}

func (d *Driver) runIndex(ctx context.Context, idx string) (domain.Signal, domain.ExitStatus) {
	var sig domain.Signal
	status := d.index.Run(ctx, idx)
	if status.Aborted() {
		return sig, status
	}
	if !status.OK() {
		sig.Set(domain.IndexError)
		d.diag.InsertError(0, "Index Processor Error", indexProcessorMessage, "")
	}
	if ilg := filepath.Join(d.dir, tools.ChangeExtension(idx, ".ilg")); fileExists(ilg) {
		sig.Set(tools.ScanIlg(ilg, d.diag))
	}
	return sig, status
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isEmptyFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() == 0
}
