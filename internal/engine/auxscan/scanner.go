// Package auxscan extracts bibliography data from LaTeX auxiliary files.
package auxscan

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/texrun/internal/core/domain"
	"go.trai.ch/texrun/internal/engine/texlog"
	"go.trai.ch/texrun/internal/engine/tools"
)

// maxNumberedAux bounds the numbered sibling aux files written by bibtopic.
const maxNumberedAux = 999

var (
	reCitation = regexp.MustCompile(`^\\citation\{([^}]+)\}$`)
	reBibdata  = regexp.MustCompile(`^\\bibdata\{([^}]+)\}$`)
	reBibstyle = regexp.MustCompile(`^\\bibstyle\{([^}]+)\}$`)
	reInput    = regexp.MustCompile(`^\\@input\{([^}]+)\}$`)
)

// Scan reads auxFile and every file it pulls in with \@input into one AuxInfo.
// A missing file yields an empty AuxInfo.
func Scan(auxFile string) domain.AuxInfo {
	info := domain.NewAuxInfo(auxFile)
	scanInto(auxFile, &info)
	return info
}

func scanInto(auxFile string, info *domain.AuxInfo) {
	r, closer, err := texlog.Open(auxFile)
	if err != nil {
		return
	}
	defer closer.Close() //nolint:errcheck // read-only file

	dir := filepath.Dir(auxFile)
	for {
		line, ok := r.Next()
		if !ok {
			return
		}
		line = strings.TrimSpace(line)
		switch {
		case reCitation.MatchString(line):
			for _, key := range splitList(reCitation.FindStringSubmatch(line)[1]) {
				info.Citations[key] = struct{}{}
			}
		case reBibdata.MatchString(line):
			for _, db := range splitList(reBibdata.FindStringSubmatch(line)[1]) {
				info.Databases[tools.ChangeExtension(db, ".bib")] = struct{}{}
			}
		case reBibstyle.MatchString(line):
			for _, style := range splitList(reBibstyle.FindStringSubmatch(line)[1]) {
				info.Styles[tools.ChangeExtension(style, ".bst")] = struct{}{}
			}
		case reInput.MatchString(line):
			child := reInput.FindStringSubmatch(line)[1]
			if !filepath.IsAbs(child) {
				child = filepath.Join(dir, child)
			}
			scanInto(child, info)
		}
	}
}

// ScanAll returns the snapshots relevant for the bibliography of the master
// aux file. Normally that is the master plus its numbered siblings
// (base.1.aux, base.2.aux, ...) up to the first missing number. When
// onlyChildBibs is set, it is the aux file of every listed child that exists.
func ScanAll(masterAux string, onlyChildBibs bool, children []string) []domain.AuxInfo {
	var infos []domain.AuxInfo
	dir := filepath.Dir(masterAux)

	if onlyChildBibs {
		for _, child := range children {
			aux := child
			if !filepath.IsAbs(aux) {
				aux = filepath.Join(dir, aux)
			}
			aux = tools.ChangeExtension(aux, ".aux")
			if fileExists(aux) {
				infos = append(infos, Scan(aux))
			}
		}
		return infos
	}

	infos = append(infos, Scan(masterAux))

	base := strings.TrimSuffix(masterAux, filepath.Ext(masterAux))
	for i := 1; i <= maxNumberedAux; i++ {
		aux := base + "." + strconv.Itoa(i) + ".aux"
		if !fileExists(aux) {
			break
		}
		infos = append(infos, Scan(aux))
	}
	return infos
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
