package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/appforge/cli/internal/cmdutil"
	oerrors "github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/genome"
	"github.com/appforge/cli/internal/marketplace"
	"github.com/appforge/cli/internal/output"
	"github.com/appforge/cli/internal/resolve"
)

// NewVetCmd creates the vet command.
func NewVetCmd() *cobra.Command {
	var gf cmdutil.GenomeFlags

	cmd := &cobra.Command{
		Use:   "vet [path]",
		Short: "Validate a genome without executing anything",
		Long: `Validate a genome and the catalog entries it references.

Checks run in three stages, and problems within a stage are collected
rather than stopping at the first:

  1. Genome well-formedness: required fields, marketplace references,
     app dependencies naming declared packages.
  2. Catalog references: every declared package has a recipe in its
     marketplace, and the chosen provider exists.
  3. Full resolution: module manifests load, auto-inclusion settles, and
     the dependency graph is acyclic.

Arguments:
  path    Directory containing genome.yaml (default: current directory)

Examples:
  # Validate ./genome.yaml
  forge vet

  # Validate a genome in another directory
  forge vet ./examples/shop`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVet(cmd, args, &gf)
		},
	}

	gf.AddTo(cmd)

	return cmd
}

// runVet executes the vet command.
func runVet(_ *cobra.Command, args []string, gf *cmdutil.GenomeFlags) error {
	ctx := context.Background()
	genomePath := cmdutil.ResolveGenomePath(args, gf.Genome)

	g, errs := genome.LoadAll(genomePath)
	if g != nil && len(errs) == 0 {
		errs = vetCatalog(ctx, g, genomePath)
	}

	if len(errs) == 0 {
		output.Println(output.FormatCheckmark("Genome is valid"))
		return nil
	}

	output.Println(fmt.Sprintf("%d problem(s) found in %s", len(errs), genomePath))
	for _, e := range errs {
		output.Println("")
		output.Println(e.Error())
	}

	return &oerrors.ExitError{
		Code:    oerrors.ExitValidationError,
		Err:     fmt.Errorf("genome validation failed with %d problem(s)", len(errs)),
		Printed: true,
	}
}

// vetCatalog checks the genome's catalog references: recipes and providers
// per package first (collected), then one full resolution for manifest,
// auto-inclusion, and cycle errors.
func vetCatalog(ctx context.Context, g *genome.Genome, genomePath string) []error {
	registry, err := marketplace.NewRegistry(filepath.Dir(genomePath), g.Marketplaces)
	if err != nil {
		return []error{err}
	}
	books, err := registry.PrefetchRecipeBooks(ctx)
	if err != nil {
		return []error{err}
	}

	var errs []error
	names := make([]string, 0, len(g.Packages))
	for name := range g.Packages {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pkg := g.Packages[name]
		book, ok := books[pkg.From]
		if !ok {
			continue
		}

		rec, ok := book.Packages[name]
		if !ok {
			errs = append(errs, oerrors.NewNotFoundError(
				fmt.Sprintf("no recipe for package %q in marketplace %q", name, pkg.From),
				"",
				"Check the recipe book's packages table for the exact package name.",
			))
			continue
		}

		provider := pkg.Provider
		if provider == "" {
			provider = rec.DefaultProvider
		}
		if provider == "" {
			errs = append(errs, oerrors.NewValidationError(
				fmt.Sprintf("package %q picks no provider and its recipe has no defaultProvider", name),
				"",
				fmt.Sprintf("packages.%s.provider", name),
				"Set provider on the package, or add defaultProvider to the recipe.",
			))
			continue
		}
		if _, ok := rec.Providers[provider]; !ok {
			available := make([]string, 0, len(rec.Providers))
			for p := range rec.Providers {
				available = append(available, p)
			}
			sort.Strings(available)
			errs = append(errs, oerrors.NewNotFoundError(
				fmt.Sprintf("package %q has no provider %q (available: %v)", name, provider, available),
				"",
				"Pick one of the available providers.",
			))
		}
	}
	if len(errs) > 0 {
		return errs
	}

	if _, err := resolve.New(registry).Resolve(ctx, g); err != nil {
		return []error{err}
	}
	return nil
}
