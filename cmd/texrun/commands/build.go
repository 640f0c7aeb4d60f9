package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/texrun/internal/app"
	"go.trai.ch/texrun/internal/core/domain"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <file.tex>",
		Short: "Compile a document, running BibTeX and the index tools as needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cmd)
			if err != nil {
				return err
			}
			result, err := c.app.Build(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return app.OutcomeError(result)
		},
	}
	addBuildFlags(cmd)
	return cmd
}

// addBuildFlags registers the flags shared by build and watch. They override
// the values read from texrun.yaml.
func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().String("latex", "", "Compiler command, e.g. \"lualatex -interaction=nonstopmode\"")
	cmd.Flags().String("bibtex", "", "Bibliography processor command")
	cmd.Flags().String("index", "", "Index processor command")
	cmd.Flags().String("search-path", "", "Directory prepended to TEXINPUTS, BIBINPUTS and BSTINPUTS")
	cmd.Flags().Int("max-runs", 0, "Maximum number of compiler runs")
	cmd.Flags().Duration("timeout", 0, "Time limit for every tool invocation")
	cmd.Flags().Bool("clean", false, "Remove auxiliary files before compiling")
	cmd.Flags().String("metrics-file", "", "Write build metrics in Prometheus textfile format")
	cmd.Flags().String("journal", "", "Write the progress of every tool run as JSON lines")
	cmd.Flags().BoolP("quiet", "q", false, "Do not print the build report")
}

func buildOptions(cmd *cobra.Command) (app.BuildOptions, error) {
	var opts app.BuildOptions
	flags := cmd.Flags()

	for name, set := range map[string]func(*domain.Settings, string){
		"latex":       func(s *domain.Settings, v string) { s.LatexCommand = v },
		"bibtex":      func(s *domain.Settings, v string) { s.BibtexCommand = v },
		"index":       func(s *domain.Settings, v string) { s.IndexCommand = v },
		"search-path": func(s *domain.Settings, v string) { s.SearchPath = v },
	} {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return opts, err
		}
		opts.Overrides = append(opts.Overrides, func(s *domain.Settings) { set(s, v) })
	}

	if flags.Changed("max-runs") {
		n, err := flags.GetInt("max-runs")
		if err != nil {
			return opts, err
		}
		opts.Overrides = append(opts.Overrides, func(s *domain.Settings) { s.MaxRuns = n })
	}
	if flags.Changed("timeout") {
		d, err := flags.GetDuration("timeout")
		if err != nil {
			return opts, err
		}
		opts.Overrides = append(opts.Overrides, func(s *domain.Settings) { s.Wait.Timeout = d })
	}
	if flags.Changed("clean") {
		clean, err := flags.GetBool("clean")
		if err != nil {
			return opts, err
		}
		opts.Overrides = append(opts.Overrides, func(s *domain.Settings) { s.CleanStart = clean })
	}

	var err error
	if opts.MetricsFile, err = flags.GetString("metrics-file"); err != nil {
		return opts, err
	}
	if opts.JournalFile, err = flags.GetString("journal"); err != nil {
		return opts, err
	}
	if opts.Quiet, err = flags.GetBool("quiet"); err != nil {
		return opts, err
	}
	return opts, nil
}
