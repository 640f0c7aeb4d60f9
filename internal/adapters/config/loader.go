// Package config provides the configuration loader for texrun.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.trai.ch/texrun/internal/core/domain"
	"go.trai.ch/texrun/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	waitBlocking = "blocking"
	waitPolling  = "polling"

	defaultPollInterval = 100 * time.Millisecond
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Defaults returns the settings used when no configuration file exists.
func Defaults() domain.Settings {
	return domain.Settings{
		LatexCommand:      "pdflatex -interaction=nonstopmode",
		BibtexCommand:     "bibtex",
		IndexCommand:      "makeindex",
		JIndexCommand:     "mendex",
		SplitIndexCommand: "splitindex",
		NomenclCommand:    "makeindex -s nomencl.ist",
		Language:          domain.Language{Babel: "english", Code: "en_US", Xindy: "english"},
		Encoding:          domain.Encoding{Iconv: "UTF-8"},
		MaxRuns:           domain.DefaultMaxRuns,
		Wait: domain.WaitPolicy{
			Mode:         domain.WaitPolling,
			PollInterval: defaultPollInterval,
		},
	}
}

// Load returns the settings for documents in dir. The configuration file is
// searched in dir and then in its parents; without one the defaults apply.
func (l *Loader) Load(dir string) (domain.Settings, error) {
	path, ok := findConfiguration(dir)
	if !ok {
		return Defaults(), nil
	}
	l.Logger.Debug("using configuration", "path", path)

	var texfile Texfile
	if err := readAndUnmarshalYAML(path, &texfile); err != nil {
		return domain.Settings{}, err
	}
	return apply(Defaults(), &texfile, filepath.Dir(path))
}

func findConfiguration(dir string) (string, bool) {
	current := dir
	for {
		candidate := filepath.Join(current, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is found by searching the document directory
	data, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read config file"), "path", configPath)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrInvalidConfig.Error()), "path", configPath)
	}

	return nil
}

// apply overlays the non-empty values of t onto s. Relative paths are
// resolved against base, the directory holding the configuration file.
func apply(s domain.Settings, t *Texfile, base string) (domain.Settings, error) {
	setString(&s.LatexCommand, t.Latex)
	setString(&s.BibtexCommand, t.Bibtex)
	setString(&s.IndexCommand, t.Index)
	setString(&s.JIndexCommand, t.JIndex)
	setString(&s.SplitIndexCommand, t.SplitIndex)
	setString(&s.NomenclCommand, t.Nomencl)

	setString(&s.Language.Babel, t.Language.Babel)
	setString(&s.Language.Code, t.Language.Code)
	setString(&s.Language.Xindy, t.Language.Xindy)
	setString(&s.Encoding.Iconv, t.Encoding.Iconv)
	s.Encoding.FullUnicode = t.Encoding.FullUnicode
	s.Encoding.NoInputenc = t.Encoding.NoInputenc

	s.Japanese = t.Japanese
	s.Indices = t.Indices
	s.MultipleIndices = t.MultiIndex
	s.Memoir = t.Memoir
	s.OnlyChildBibs = t.ChildBibs
	s.IncludeAll = t.IncludeAll
	s.IgnoreMissingGlyphs = t.NoGlyphs
	s.LegacyNomencl = t.LegacyNomen
	s.CleanStart = t.CleanStart

	if t.SearchPath != "" {
		s.SearchPath = resolvePath(base, t.SearchPath)
	}

	switch {
	case t.MaxRuns < 0:
		return domain.Settings{}, zerr.With(domain.ErrInvalidConfig, "max_runs", t.MaxRuns)
	case t.MaxRuns > 0:
		s.MaxRuns = t.MaxRuns
	}

	switch t.Wait {
	case "":
	case waitBlocking:
		s.Wait.Mode = domain.WaitBlocking
	case waitPolling:
		s.Wait.Mode = domain.WaitPolling
	default:
		return domain.Settings{}, zerr.With(domain.ErrInvalidConfig, "wait", t.Wait)
	}
	if t.PollInterval > 0 {
		s.Wait.PollInterval = t.PollInterval
	}
	s.Wait.Timeout = t.Timeout

	env, err := loadEnvironment(t, base)
	if err != nil {
		return domain.Settings{}, err
	}
	s.Env = env

	return s, nil
}

// loadEnvironment merges the variables of the env file with the env map.
// The env map wins.
func loadEnvironment(t *Texfile, base string) (map[string]string, error) {
	env := make(map[string]string)
	if t.EnvFile != "" {
		path := resolvePath(base, t.EnvFile)
		fileEnv, err := godotenv.Read(path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to read env file"), "path", path)
		}
		for k, v := range fileEnv {
			env[k] = v
		}
	}
	for k, v := range t.Env {
		env[k] = v
	}
	if len(env) == 0 {
		return nil, nil
	}
	return env, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func resolvePath(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
