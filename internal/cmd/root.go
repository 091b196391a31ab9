// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/appforge/cli/internal/config"
	"github.com/appforge/cli/internal/output"
)

var (
	// Global flags
	configFlag     string
	verboseFlag    bool
	timestampsFlag bool
	strictFlag     bool

	// Loaded configuration (set during PersistentPreRunE)
	forgeConfig *config.Config
)

// NewRootCmd creates the root command for the forge CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "forge",
		Short:         "Genome-driven project scaffolding",
		Long: `forge materializes projects from a genome: declared packages resolve
through marketplace recipes into concrete modules, modules order into
dependency batches, and batches execute against a staged file system.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeGlobals(cmd)
		},
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env: FORGE_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", false, "Show timestamps in log output")
	rootCmd.PersistentFlags().BoolVar(&strictFlag, "strict", false, "Treat recoverable resolution warnings as errors (env: FORGE_STRICT)")

	// Add subcommands
	rootCmd.AddCommand(NewCreateCmd())
	rootCmd.AddCommand(NewPlanCmd())
	rootCmd.AddCommand(NewLockCmd())
	rootCmd.AddCommand(NewVetCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// initializeGlobals sets up logging and loads configuration.
func initializeGlobals(cmd *cobra.Command) error {
	// Load configuration first so its values can shape logging setup
	loaded, err := config.NewLoader().LoadWithDefaults(configFlag)
	if err != nil {
		output.Debug("config load error", "error", err)
		// Don't fail here - commands that don't need config still work
		loaded = config.DefaultConfig()
	}
	forgeConfig = loaded

	// Resolve timestamps: flag (if explicitly set) > config > default
	logCfg := output.LogConfig{
		Verbose: verboseFlag,
	}
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(timestampsFlag)
	} else if forgeConfig.Log.Timestamps != nil {
		logCfg.Timestamps = forgeConfig.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	if verboseFlag {
		output.Debug("initializing CLI",
			"config", configFlag,
			"strict", StrictEnabled(),
			"parallelism", forgeConfig.Parallelism,
			"marketplaceDir", forgeConfig.MarketplaceDir,
		)
	}

	return nil
}

// GetConfig returns the loaded forge configuration. Nil before the root
// command's PersistentPreRunE has run.
func GetConfig() *config.Config {
	return forgeConfig
}

// StrictEnabled reports whether strict mode is on, via flag or config.
func StrictEnabled() bool {
	return strictFlag || (forgeConfig != nil && forgeConfig.Strict)
}
