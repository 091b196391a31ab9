package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/appforge/cli/internal/cmdutil"
	"github.com/appforge/cli/internal/engine"
	oerrors "github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/genome"
	"github.com/appforge/cli/internal/lockfile"
	"github.com/appforge/cli/internal/output"
	"github.com/appforge/cli/internal/plan"
	"github.com/appforge/cli/internal/template"
	"github.com/appforge/cli/internal/vfs"
)

// NewCreateCmd creates the create command.
func NewCreateCmd() *cobra.Command {
	var gf cmdutil.GenomeFlags

	// Create-specific flags (local to this command)
	var (
		dryRunFlag      bool
		forceLockFlag   bool
		parallelismFlag int
		yesFlag         bool
	)

	cmd := &cobra.Command{
		Use:   "create [path]",
		Short: "Materialize a project from its genome",
		Long: `Materialize a project from its genome declaration.

This command loads genome.yaml, resolves every declared package through the
marketplace recipes, plans the modules into dependency-ordered batches, and
executes each module's blueprint against a staged file system. Files reach
disk only when a module's whole blueprint succeeded.

A genome.lock.json next to the genome pins the resolution. When the stored
lock still matches the genome, modules, versions, and execution order are
taken from it without re-resolving; otherwise the genome is resolved from
scratch and a fresh lock is written after a successful run.

Arguments:
  path    Directory containing genome.yaml (default: current directory)

Examples:
  # Create the project declared in ./genome.yaml
  forge create

  # Create from a genome in another directory
  forge create ./examples/shop

  # Preview the files a create would write
  forge create --dry-run

  # Re-pin the lock file even if it looks current
  forge create --force-lock

  # Scaffold into a directory that already has content
  forge create --yes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, args, &gf, dryRunFlag, forceLockFlag, parallelismFlag, yesFlag)
		},
	}

	gf.AddTo(cmd)

	// Create-specific flags
	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false,
		"Stage every file action and print the result without writing")
	cmd.Flags().BoolVar(&forceLockFlag, "force-lock", false,
		"Ignore the existing lock file and re-pin the resolution")
	cmd.Flags().IntVar(&parallelismFlag, "parallelism", 0,
		"Max concurrent modules in a parallel batch (0 = one per CPU)")
	cmd.Flags().BoolVar(&yesFlag, "yes", false,
		"Scaffold into a project directory that already has content")

	return cmd
}

// runCreate executes the create command: resolve, plan, gate, execute, pin.
// A stored lock that still matches the genome short-circuits resolution
// entirely: modules, parameters, and batches come from the lock, and only
// the manifests load fresh.
func runCreate(_ *cobra.Command, args []string, gf *cmdutil.GenomeFlags,
	dryRun, forceLock bool, parallelism int, yes bool) error {
	ctx := context.Background()

	genomePath := cmdutil.ResolveGenomePath(args, gf.Genome)
	g, err := genome.Load(genomePath)
	if err != nil {
		return err
	}
	hash, err := genome.ComputeHash(g)
	if err != nil {
		return err
	}

	lockPath := filepath.Join(filepath.Dir(genomePath), lockfile.FileName)
	stored := lockfile.Read(lockPath)
	lockCurrent := !forceLock && stored.CanReuse(hash, g.FrameworkModuleIDs())

	var result *cmdutil.Result
	if lockCurrent {
		result, err = cmdutil.ResolveFromLock(ctx, g, genomePath, stored)
	} else {
		result, err = cmdutil.ResolveGenome(ctx, cmdutil.ResolveOpts{
			Args:       args,
			GenomeFlag: gf.Genome,
			Strict:     StrictEnabled(),
		})
	}
	if err != nil {
		return err
	}
	cmdutil.ShowResolution(result, verboseFlag)

	if !dryRun && !yes {
		if err := checkTargetDir(result.ProjectRoot, result.GenomePath); err != nil {
			return err
		}
	}

	if !dryRun {
		if err := os.MkdirAll(result.ProjectRoot, 0o755); err != nil {
			return fmt.Errorf("creating project directory: %w", err)
		}
	}

	eng := engine.New(engine.Options{
		Registry:  result.Registry,
		Manifests: result.Resolution.Manifests,
		Project: template.ProjectData{
			Name:        result.Genome.Project.Name,
			Version:     result.Genome.Project.Version,
			Description: result.Genome.Project.Description,
		},
		Root:        result.ProjectRoot,
		Parallelism: resolveParallelism(parallelism),
		DryRun:      dryRun,
	})

	title := fmt.Sprintf("Scaffolding %s...", result.Genome.Project.Name)
	if dryRun {
		title = fmt.Sprintf("Staging %s (dry run)...", result.Genome.Project.Name)
	}

	var run *engine.RunResult
	execute := func() error {
		run = eng.Run(ctx, result.Batches)
		return nil
	}
	if verboseFlag {
		// Spinner output would interleave with debug logs
		_ = execute()
	} else if err := output.RunWithSpinner(ctx, execute, output.WithTitle(title)); err != nil {
		return err
	}

	if dryRun {
		printStagedTree(result, run)
	}

	if !run.Success {
		for _, e := range run.Errors {
			output.Error(e.Error())
		}
		planned := plan.TotalModules(result.Batches)
		skipped := planned - run.TotalExecuted
		return &oerrors.ExitError{
			Code:    oerrors.ExitCodeFromError(run.Errors[0]),
			Err:     fmt.Errorf("%d of %d modules failed (%d skipped)", run.TotalFailed, planned, skipped),
			Printed: true,
		}
	}

	if !dryRun && !lockCurrent {
		fresh, err := lockfile.Build(result.Genome, result.Resolution, result.Batches, time.Now())
		if err != nil {
			return err
		}
		if err := fresh.Write(lockPath); err != nil {
			return fmt.Errorf("writing lock file: %w", err)
		}
		output.Debug("lock file written", "lock", lockPath, "modules", len(fresh.Modules))
	}

	printRunSummary(result, run, dryRun)
	return nil
}

// checkTargetDir refuses to scaffold into a directory that already has
// content. The genome and lock files themselves don't count: a genome at
// the project root is the normal in-place layout.
func checkTargetDir(root, genomePath string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking project directory: %w", err)
	}

	ownFiles := map[string]bool{}
	if filepath.Clean(filepath.Dir(genomePath)) == filepath.Clean(root) {
		ownFiles[filepath.Base(genomePath)] = true
		ownFiles[lockfile.FileName] = true
	}

	for _, e := range entries {
		if ownFiles[e.Name()] {
			continue
		}
		return oerrors.NewConflictError(
			fmt.Sprintf("project directory %s is not empty", root),
			map[string]string{"found": e.Name()},
			"Re-run with --yes to scaffold into the existing directory.",
		)
	}
	return nil
}

// resolveParallelism applies the precedence flag > config > one per CPU.
func resolveParallelism(flagValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	if cfg := GetConfig(); cfg != nil && cfg.Parallelism > 0 {
		return cfg.Parallelism
	}
	return runtime.NumCPU()
}

// printStagedTree renders the dry-run result as a file tree rooted at the
// project directory.
func printStagedTree(result *cmdutil.Result, run *engine.RunResult) {
	var entries []output.StagedEntry
	for _, br := range run.BatchResults {
		for _, r := range br.Results {
			for path, sf := range r.Staged {
				entries = append(entries, output.StagedEntry{
					Path:   path,
					State:  string(sf.State),
					Origin: r.ModuleID,
				})
			}
		}
	}

	if len(entries) == 0 {
		output.Println("Dry run: no files would be written")
		return
	}

	output.Println(output.RenderStagedTree(filepath.Base(result.ProjectRoot), entries))
}

// printRunSummary prints per-module outcome lines, file counts, and any
// warnings collected during the run.
func printRunSummary(result *cmdutil.Result, run *engine.RunResult, dryRun bool) {
	created, modified := 0, 0
	for _, br := range run.BatchResults {
		for _, r := range br.Results {
			status := output.StatusDone
			if r.Error != nil {
				status = output.StatusFailed
			}
			duration := output.StyleDim.Render(" " + r.Duration.Round(time.Millisecond).String())
			output.Println(output.FormatModuleLine(r.ModuleID, status) + duration)

			for _, f := range r.Files {
				if f.State == vfs.StateModified {
					modified++
				} else {
					created++
				}
			}
		}
	}

	for _, w := range run.Warnings {
		output.Println(output.FormatWarning(w))
	}

	if dryRun {
		staged := 0
		for _, br := range run.BatchResults {
			for _, r := range br.Results {
				staged += len(r.Staged)
			}
		}
		output.Println(output.FormatCheckmark(fmt.Sprintf(
			"Dry run complete: %d modules, %d files staged", run.TotalExecuted, staged)))
		return
	}

	summary := fmt.Sprintf("Project %s created: %d modules, %d files written",
		result.Genome.Project.Name, run.TotalExecuted, created+modified)
	if modified > 0 {
		summary += fmt.Sprintf(" (%d created, %d modified)", created, modified)
	}
	output.Println(output.FormatCheckmark(summary))
}
