package app_test

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
	"go.trai.ch/texrun/internal/app"
	"go.trai.ch/texrun/internal/core/domain"
)

func TestReport_Print(t *testing.T) {
	tests := []struct {
		name       string
		master     string
		result     domain.Result
		goldenName string
	}{
		{
			name:       "success",
			master:     "/docs/main.tex",
			result:     domain.Result{Runs: 3},
			goldenName: "report_success",
		},
		{
			name:       "up to date",
			master:     "/docs/main.tex",
			result:     domain.Result{Signals: domain.NoChange},
			goldenName: "report_up_to_date",
		},
		{
			name:       "aborted",
			master:     "/docs/main.tex",
			result:     domain.Result{Signals: domain.Killed, Runs: 1},
			goldenName: "report_aborted",
		},
		{
			name:       "no output",
			master:     "/docs/main.tex",
			result:     domain.Result{Signals: domain.NoOutput, Runs: 1},
			goldenName: "report_no_output",
		},
		{
			name:   "failed with records",
			master: "/docs/thesis.tex",
			result: domain.Result{
				Signals: domain.UndefRef | domain.TexError | domain.LatexError,
				Runs:    2,
				Errors: []domain.ErrorRecord{
					{
						Line:        7,
						Description: "Undefined control sequence.",
						Text:        " \\foo\n         bar\n",
						ChildFile:   "chapters/intro.tex",
					},
					{Description: "Missing \\begin{document}."},
				},
				Refs: []domain.ErrorRecord{
					{Line: 12, Description: "Reference `sec:x' on page 1 undefined"},
				},
			},
			goldenName: "report_failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			require.NoError(t, app.NewReport(buf).Print(tt.master, tt.result))

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}
