package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/appforge/cli/internal/cmdutil"
	oerrors "github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/output"
)

// NewPlanCmd creates the plan command.
func NewPlanCmd() *cobra.Command {
	var gf cmdutil.GenomeFlags
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "plan [path]",
		Short: "Show the execution plan without executing",
		Long: `Show the execution plan a create would run, without executing it.

The genome is loaded and resolved exactly as 'forge create' would, then the
planned batches are printed: batch number, execution mode, and the modules
each batch runs. Parallel batches hold mutually independent modules.

Arguments:
  path    Directory containing genome.yaml (default: current directory)

Examples:
  # Print the plan as a table
  forge plan

  # Print the plan as YAML (matches the lock file's executionPlan)
  forge plan -o yaml

  # Print the plan as JSON for tooling
  forge plan -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, args, &gf, outputFlag)
		},
	}

	gf.AddTo(cmd)
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "table",
		"Output format: table, yaml, json")

	return cmd
}

// runPlan executes the plan command.
func runPlan(_ *cobra.Command, args []string, gf *cmdutil.GenomeFlags, outputFlag string) error {
	format := output.OutputFormat(strings.ToLower(outputFlag))
	if !format.IsValid() {
		return oerrors.NewValidationError(
			fmt.Sprintf("unsupported output format %q", outputFlag),
			"",
			"--output",
			fmt.Sprintf("Valid formats: %s.", strings.Join(output.ValidFormats(), ", ")),
		)
	}

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

	switch format {
	case output.FormatYAML:
		data, err := yaml.Marshal(cmdutil.NewPlanView(result))
		if err != nil {
			return fmt.Errorf("encoding plan: %w", err)
		}
		output.Print(string(data))

	case output.FormatJSON:
		data, err := json.MarshalIndent(cmdutil.NewPlanView(result), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding plan: %w", err)
		}
		output.Println(string(data))

	default:
		output.Println(cmdutil.RenderPlanTable(result.Batches))
	}

	return nil
}
