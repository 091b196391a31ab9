package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/appforge/cli/internal/config"
	oerrors "github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/output"
)

var configInitForce bool

// defaultRecipeBook seeds ~/.forge/marketplace with an empty catalog so a
// genome can point at the default local marketplace out of the box.
const defaultRecipeBook = `version: 1
packages: {}
`

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize default configuration",
		Long: `Initialize the forge CLI configuration.

Creates the following files in ~/.forge/:
  config.yaml              Annotated configuration file
  marketplace/recipes.yaml Empty local marketplace catalog

The configuration includes:
  - Default local marketplace directory
  - Parallelism cap for parallel batches
  - Strict mode and logging settings

Examples:
  # Initialize configuration
  forge config init

  # Overwrite existing configuration
  forge config init --force`,
		RunE: runConfigInit,
	}

	cmd.Flags().BoolVarP(&configInitForce, "force", "f", false,
		"Overwrite existing configuration")

	return cmd
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	// Get paths
	paths, err := config.DefaultPaths()
	if err != nil {
		return oerrors.Wrap(oerrors.ErrNotFound, "could not determine home directory")
	}

	// Check if config exists
	if _, err := os.Stat(paths.ConfigFile); err == nil && !configInitForce {
		return &oerrors.DetailError{
			Type:     "validation failed",
			Message:  "configuration already exists",
			Location: paths.ConfigFile,
			Hint:     "Use --force to overwrite existing configuration.",
			Cause:    oerrors.ErrValidation,
		}
	}

	// Create the home directory with secure permissions (0700)
	if err := os.MkdirAll(paths.HomeDir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", paths.HomeDir, err)
	}

	// Write config.yaml with secure permissions (0600)
	if err := os.WriteFile(paths.ConfigFile, []byte(config.DefaultConfigTemplate), 0o600); err != nil {
		return fmt.Errorf("writing config.yaml: %w", err)
	}

	// Seed the default local marketplace with an empty recipe book
	if err := os.MkdirAll(paths.MarketplaceDir, 0o755); err != nil {
		return fmt.Errorf("creating marketplace directory: %w", err)
	}
	recipesFile := filepath.Join(paths.MarketplaceDir, "recipes.yaml")
	if _, err := os.Stat(recipesFile); os.IsNotExist(err) || configInitForce {
		if err := os.WriteFile(recipesFile, []byte(defaultRecipeBook), 0o644); err != nil {
			return fmt.Errorf("writing recipes.yaml: %w", err)
		}
	}

	output.Println("Configuration initialized at " + paths.HomeDir)
	output.Println("")
	output.Println("Created files:")
	output.Println("  " + paths.ConfigFile)
	output.Println("  " + recipesFile)
	output.Println("")
	output.Println("Validate a genome with: forge vet")

	return nil
}
