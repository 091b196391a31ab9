package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/appforge/cli/internal/config"
	"github.com/appforge/cli/internal/output"
)

// NewConfigShowCmd creates the config show command.
func NewConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show resolved configuration",
		Long: `Show the effective forge configuration.

Prints the configuration after merging the config file, FORGE_*
environment variables, and built-in defaults, together with the file the
values were read from.

Examples:
  # Show effective configuration
  forge config show

  # Show configuration read from an explicit file
  forge config show --config ./forge.yaml

  # Show which sources shadow each other
  forge config show --verbose`,
		RunE: runConfigShow,
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	pathRes, err := config.ResolveConfigPath(config.ResolveConfigPathOptions{
		FlagValue: configFlag,
	})
	if err != nil {
		return err
	}

	cfg := GetConfig()
	if cfg == nil {
		cfg, err = config.NewLoader().LoadWithDefaults(configFlag)
		if err != nil {
			return err
		}
	}

	marketRes, err := config.ResolveMarketplaceDir(config.ResolveMarketplaceDirOptions{
		ConfigValue: cfg.MarketplaceDir,
	})
	if err != nil {
		return err
	}

	if verboseFlag {
		config.LogResolvedValues([]config.ResolvedValue{
			{Name: "config", Value: pathRes.ConfigPath, Source: pathRes.Source, Shadowed: pathRes.Shadowed},
			{Name: "marketplaceDir", Value: marketRes.Dir, Source: marketRes.Source, Shadowed: marketRes.Shadowed},
		})
	}

	exists, err := config.ConfigFileExists(pathRes.ConfigPath)
	if err != nil {
		return err
	}
	if exists {
		output.Println(fmt.Sprintf("# %s (%s)", pathRes.ConfigPath, pathRes.Source))
	} else {
		output.Println(fmt.Sprintf("# %s (%s, not found; defaults shown)", pathRes.ConfigPath, pathRes.Source))
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	output.Print(string(data))

	return nil
}
