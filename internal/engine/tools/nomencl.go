package tools

import (
	"context"
	"path/filepath"

	"go.trai.ch/texrun/internal/core/domain"
)

// Nomenclature runs the nomenclature processor.
type Nomenclature struct {
	env    Env
	master string
}

// NewNomenclature creates a Nomenclature for the master .tex file.
func NewNomenclature(env Env, master string) *Nomenclature {
	return &Nomenclature{env: env, master: master}
}

// Command returns the command that turns the master's in file into out.
// Both are extensions such as ".nlo" and ".nls".
func (n *Nomenclature) Command(in, out string) string {
	return n.env.Settings.NomenclCommand + " " +
		Quote(filepath.Base(ChangeExtension(n.master, in))) +
		" -o " + filepath.Base(ChangeExtension(n.master, out))
}

// Run runs the nomenclature processor.
func (n *Nomenclature) Run(ctx context.Context, in, out string) domain.ExitStatus {
	n.env.Logger.Info("running nomenclature processor", "input", in)
	return n.env.run(ctx, "nomencl", n.Command(in, out))
}
