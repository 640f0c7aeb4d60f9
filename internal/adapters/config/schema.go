package config

import "time"

// FileName is the name of the optional configuration file.
const FileName = "texrun.yaml"

// Texfile represents the structure of the texrun.yaml configuration file.
type Texfile struct {
	Latex      string `yaml:"latex"`
	Bibtex     string `yaml:"bibtex"`
	Index      string `yaml:"index"`
	JIndex     string `yaml:"jindex"`
	SplitIndex string `yaml:"splitindex"`
	Nomencl    string `yaml:"nomencl"`

	Language    LanguageDTO `yaml:"language"`
	Encoding    EncodingDTO `yaml:"encoding"`
	Japanese    bool        `yaml:"japanese"`
	Indices     []string    `yaml:"indices"`
	MultiIndex  bool        `yaml:"multiple_indices"`
	Memoir      bool        `yaml:"memoir"`
	ChildBibs   bool        `yaml:"only_child_bibs"`
	IncludeAll  bool        `yaml:"include_all"`
	NoGlyphs    bool        `yaml:"ignore_missing_glyphs"`
	LegacyNomen bool        `yaml:"legacy_nomencl"`

	SearchPath   string            `yaml:"search_path"`
	Env          map[string]string `yaml:"env"`
	EnvFile      string            `yaml:"env_file"`
	Wait         string            `yaml:"wait"`
	PollInterval time.Duration     `yaml:"poll_interval"`
	Timeout      time.Duration     `yaml:"timeout"`
	MaxRuns      int               `yaml:"max_runs"`
	CleanStart   bool              `yaml:"clean_start"`
}

// LanguageDTO describes the document language.
type LanguageDTO struct {
	Babel string `yaml:"babel"`
	Code  string `yaml:"code"`
	Xindy string `yaml:"xindy"`
}

// EncodingDTO describes the input encoding.
type EncodingDTO struct {
	Iconv       string `yaml:"iconv"`
	FullUnicode bool   `yaml:"full_unicode"`
	NoInputenc  bool   `yaml:"no_inputenc"`
}
