package tools

import (
	"context"
	"strings"

	"go.trai.ch/texrun/internal/core/domain"
	"go.trai.ch/texrun/internal/engine/texlog"
)

// Placeholders understood in index command templates.
const (
	placeholderXindy    = "$$x"
	placeholderBase     = "$$b"
	placeholderLanguage = "$$lang"
	placeholderLangCode = "$$lcode"
)

// Index runs the index processor.
type Index struct {
	env Env
}

// NewIndex creates an Index.
func NewIndex(env Env) *Index {
	return &Index{env: env}
}

// Command expands the index command template for idxFile and appends the
// quoted file name and params.
func (i *Index) Command(idxFile, params string) string {
	s := i.env.Settings
	cmd := s.IndexCommand
	if s.Japanese && s.JIndexCommand != "" {
		cmd = s.JIndexCommand
	}

	if strings.Contains(cmd, placeholderXindy) {
		cmd = strings.ReplaceAll(cmd, placeholderXindy, xindyOptions(s.Language, s.Encoding))
	}
	if strings.Contains(cmd, placeholderBase) {
		// xindy writes its log next to the index
		cmd = strings.ReplaceAll(cmd, placeholderBase, strings.TrimSuffix(idxFile, ".idx"))
	}
	if s.Language.Code != "" {
		cmd = strings.ReplaceAll(cmd, placeholderLangCode, s.Language.Code)
	}
	if s.Language.Babel != "" {
		cmd = strings.ReplaceAll(cmd, placeholderLanguage, s.Language.Babel)
	}

	if s.MultipleIndices && !s.Memoir {
		cmd = s.SplitIndexCommand + " -m " + Quote(cmd)
	}
	return cmd + " " + Quote(idxFile) + params
}

func xindyOptions(lang domain.Language, enc domain.Encoding) string {
	var opts []string
	if lang.Xindy != "" {
		opts = append(opts, "-L "+lang.Xindy)
	}
	switch {
	case enc.FullUnicode && enc.NoInputenc:
		// covers lualatex too
		opts = append(opts, "-I xelatex")
	case enc.Iconv == "UTF-8":
		opts = append(opts, "-C utf8 -I latex")
	default:
		opts = append(opts, "-I latex")
	}
	return strings.Join(opts, " ")
}

// Run runs the index processor on idxFile, relative to the build directory.
func (i *Index) Run(ctx context.Context, idxFile string) domain.ExitStatus {
	i.env.Logger.Info("running index processor", "file", idxFile)
	return i.env.run(ctx, "index", i.Command(idxFile, ""))
}

// ScanIlg reads an index processor log. A "!! " line and the line after it
// form a makeindex error; "ERROR: " lines are xindy errors.
func ScanIlg(path string, diag *domain.Diagnostics) domain.Signal {
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
		case strings.HasPrefix(token, "!! "):
			prev = token
		case prev != "":
			sig.Set(domain.IndexError)
			diag.InsertError(0, "Makeindex error: "+prev, prev+"\n"+token, "")
			prev = ""
		case strings.HasPrefix(token, "ERROR: "):
			sig.Set(domain.IndexError)
			diag.InsertError(0, "Xindy error: "+strings.TrimPrefix(token, "ERROR: "), token, "")
		}
	}
	return sig
}
