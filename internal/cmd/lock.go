package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/appforge/cli/internal/cmdutil"
	oerrors "github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/lockfile"
	"github.com/appforge/cli/internal/output"
)

// NewLockCmd creates the lock command.
func NewLockCmd() *cobra.Command {
	var gf cmdutil.GenomeFlags

	// Lock-specific flags (local to this command)
	var (
		forceFlag bool
		diffFlag  bool
	)

	cmd := &cobra.Command{
		Use:   "lock [path]",
		Short: "Pin the resolution in genome.lock.json",
		Long: `Resolve the genome and pin the result in genome.lock.json.

The lock records every resolved module (id, version, source, integrity
hash), the execution plan, and a hash of the genome itself. A stored lock
that still matches the genome is left untouched unless --force is given.

With --diff no lock is written: the stored lock is compared against a fresh
resolution and a YAML-aware drift report is printed. Drift exits with
code 1, which makes the flag usable as a CI freshness check.

Arguments:
  path    Directory containing genome.yaml (default: current directory)

Examples:
  # Write or refresh the lock file
  forge lock

  # Rewrite the lock even when it looks current
  forge lock --force

  # Report drift between the lock and the genome (exit 1 on drift)
  forge lock --diff`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLock(cmd, args, &gf, forceFlag, diffFlag)
		},
	}

	gf.AddTo(cmd)

	// Lock-specific flags
	cmd.Flags().BoolVar(&forceFlag, "force", false,
		"Rewrite the lock file even when it is current")
	cmd.Flags().BoolVar(&diffFlag, "diff", false,
		"Print drift between the stored lock and a fresh resolution (exit 1 on drift)")

	return cmd
}

// runLock executes the lock command.
func runLock(_ *cobra.Command, args []string, gf *cmdutil.GenomeFlags, force, diff bool) error {
	ctx := context.Background()

	result, err := cmdutil.ResolveGenome(ctx, cmdutil.ResolveOpts{
		Args:       args,
		GenomeFlag: gf.Genome,
		Strict:     StrictEnabled(),
	})
	if err != nil {
		return err
	}
	cmdutil.ShowResolution(result, verboseFlag)

	fresh, err := lockfile.Build(result.Genome, result.Resolution, result.Batches, time.Now())
	if err != nil {
		return err
	}

	lockPath := filepath.Join(filepath.Dir(result.GenomePath), lockfile.FileName)
	stored := lockfile.Read(lockPath)

	if diff {
		return diffLock(stored, fresh, lockPath)
	}

	if !force && stored.CanReuse(fresh.GenomeHash, result.Genome.FrameworkModuleIDs()) {
		output.Println(output.FormatCheckmark("Lock file is up to date"))
		return nil
	}

	if err := fresh.Write(lockPath); err != nil {
		return fmt.Errorf("writing lock file: %w", err)
	}
	output.Println(output.FormatCheckmark(fmt.Sprintf(
		"Lock file written: %s (%d modules)", lockPath, len(fresh.Modules))))
	return nil
}

// diffLock prints the drift report between a stored and a fresh lock.
// Drift is reported through the exit code so CI can gate on it.
func diffLock(stored, fresh *lockfile.LockFile, lockPath string) error {
	if stored == nil {
		return oerrors.NewNotFoundError(
			fmt.Sprintf("no lock file at %s to diff against", lockPath),
			lockPath,
			"Run 'forge lock' to create one.",
		)
	}

	useColor := output.IsTTY()
	drift, err := lockfile.Diff(stored, fresh, useColor)
	if err != nil {
		return err
	}

	if drift.IsEmpty() {
		output.Println(output.FormatCheckmark("Lock file matches the genome"))
		return nil
	}

	styles := output.GetStyles()
	if !useColor {
		styles = output.NoColorStyles()
	}

	modified := make([]output.ModifiedItem, 0, len(drift.Modified))
	for _, m := range drift.Modified {
		modified = append(modified, output.ModifiedItem{Name: m.ID, Diff: m.Diff})
	}

	output.Println(drift.Summary())
	output.Println("")
	output.Print(output.RenderDiff(drift.Added, drift.Removed, modified, styles))

	return &oerrors.ExitError{
		Code:    oerrors.ExitGeneralError,
		Err:     fmt.Errorf("lock file drift: %s", drift.Summary()),
		Printed: true,
	}
}
