package tools

import (
	"context"
	"regexp"
	"strings"

	"go.trai.ch/texrun/internal/core/domain"
	"go.trai.ch/texrun/internal/core/ports"
	"go.trai.ch/texrun/internal/engine/deplog"
	"go.trai.ch/texrun/internal/engine/deptable"
	"go.trai.ch/texrun/internal/engine/texlog"
)

var (
	reBlgDataFile      = regexp.MustCompile(`^.*Found (bibtex|BibTeX) data (file|source) '([^']+).*$`)
	reBibtexLine       = regexp.MustCompile(`^(.*---line [0-9]+ of file).*$`)
	reBibtexReading    = regexp.MustCompile(`^(.*---while reading file).*$`)
	reBibtexCrossRef   = regexp.MustCompile(`^(A bad cross reference---).*$`)
	reBibtexCapacity   = regexp.MustCompile(`^(Sorry---you've exceeded BibTeX's).*$`)
	reBibtexMaintainer = regexp.MustCompile(`^\*Please notify the BibTeX maintainer\*$`)
	reBiberError       = regexp.MustCompile(`^.*> (FATAL|ERROR) - (.*)$`)
)

// Bibliography runs bibtex or biber over the auxiliary files of a document.
type Bibliography struct {
	env    Env
	finder ports.FileFinder
	master string
}

// NewBibliography creates a Bibliography for the master .tex file, relative to env.Dir.
func NewBibliography(env Env, finder ports.FileFinder, master string) *Bibliography {
	return &Bibliography{env: env, finder: finder, master: master}
}

// Run runs the bibliography command once per auxiliary file that names a
// database (every file when biber is used). It stops at the first
// unsuccessful run and reports whether anything ran.
func (b *Bibliography) Run(ctx context.Context, infos []domain.AuxInfo, biber bool) (bool, domain.ExitStatus) {
	ran := false
	for _, info := range infos {
		if !biber && len(info.Databases) == 0 {
			continue
		}
		ran = true
		command := b.env.Settings.BibtexCommand + " " + Quote(baseName(info.AuxFile))
		status := b.env.run(ctx, "bibtex", command)
		if !status.OK() {
			return ran, status
		}
	}
	return ran, domain.ExitStatus{}
}

// UpdateDependencies replaces the tracked databases and styles with the ones
// the auxiliary files name now. Biber writes nothing to the aux file, so its
// data sources are read from the .blg log instead.
func (b *Bibliography) UpdateDependencies(ctx context.Context, table *deptable.Table, infos []domain.AuxInfo, biber bool) {
	table.RemoveByExtension(".bib")
	table.RemoveByExtension(".bst")

	for _, info := range infos {
		for _, db := range info.SortedDatabases() {
			if path := b.finder.Find(ctx, b.env.Dir, db, "bib"); path != "" {
				table.Insert(path, true)
			}
		}
		for _, style := range info.SortedStyles() {
			if path := b.finder.Find(ctx, b.env.Dir, style, "bst"); path != "" {
				table.Insert(path, true)
			}
		}
	}

	if biber {
		files := deplog.New(table, b.env.Dir, b.master)
		ScanBlg(b.BlgFile(), files, domain.NewDiagnostics())
	}
}

// BlgFile is the bibliography log of the master document.
func (b *Bibliography) BlgFile() string {
	return ChangeExtension(b.env.path(b.master), ".blg")
}

// ScanBlg reads a bibtex or biber log. Data files it names are added to the
// dependency table through files; fatal messages become BibtexError records.
func ScanBlg(path string, files *deplog.Extractor, diag *domain.Diagnostics) domain.Signal {
	r, closer, err := texlog.Open(path)
	if err != nil {
		return domain.NoErrors
	}
	defer closer.Close() //nolint:errcheck // read-only file

	var sig domain.Signal
	prev := ""
	for {
		token, ok := r.Next()
		if !ok {
			break
		}

		switch {
		case reBlgDataFile.MatchString(token):
			if data := reBlgDataFile.FindStringSubmatch(token)[3]; data != "" {
				files.AddFile(data)
			}
		case reBibtexLine.MatchString(token),
			reBibtexReading.MatchString(token),
			reBibtexCapacity.MatchString(token),
			reBibtexMaintainer.MatchString(token):
			sig.Set(domain.BibtexError)
			desc := "BibTeX error: " + token
			msg := ""
			if prev != "" && (strings.HasPrefix(token, "while executing---line") ||
				strings.HasPrefix(token, "---line ") ||
				strings.HasPrefix(token, "*Please notify the BibTeX")) {
				desc = "BibTeX error: " + prev
				msg = prev + "\n"
			}
			diag.InsertError(0, desc, msg+token, "")
		case reBibtexCrossRef.MatchString(prev):
			sig.Set(domain.BibtexError)
			diag.InsertError(0, "BibTeX error: "+prev, prev+"\n"+token, "")
		case reBiberError.MatchString(token):
			sig.Set(domain.BibtexError)
			m := reBiberError.FindStringSubmatch(token)
			diag.InsertError(0, "Biber error: "+m[2], token, "")
		}
		prev = token
	}
	return sig
}
