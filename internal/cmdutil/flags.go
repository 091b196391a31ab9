// Package cmdutil provides shared command utilities for forge commands.
// It centralizes flag group management, the load-resolve-plan pipeline,
// and output formatting helpers.
package cmdutil

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/appforge/cli/internal/genome"
)

// GenomeFlags holds flags common to commands that resolve a genome
// (create, plan, lock, vet).
type GenomeFlags struct {
	Genome string
}

// AddTo registers the genome flags on the given cobra command.
func (f *GenomeFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Genome, "genome", "g", "",
		"Path to the genome file (default: <path>/genome.yaml)")
}

// ResolveGenomePath returns the genome file path. The --genome flag names
// the file directly; otherwise the first arg names the directory holding
// genome.yaml, defaulting to the current directory.
func ResolveGenomePath(args []string, genomeFlag string) string {
	if genomeFlag != "" {
		return genomeFlag
	}
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	return filepath.Join(dir, genome.DefaultFileName)
}
