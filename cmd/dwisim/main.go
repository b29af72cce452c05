package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"dwisim/internal/logging"
	"dwisim/pkg/config"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dwisim",
		Short: "Diffusion MRI signal simulation and slice contrast tools",
		Long: `dwisim simulates diffusion-weighted MRI signals with the Sticks & Ball
model and estimates contrast windows for 2D MRI slices.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "dwisim.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error); overrides the config")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSimulateCmd(),
		newBoundCmd(),
		newPhantomCmd(),
		newConfigCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dwisim version %s\n", version)
		},
	}
}

// setup loads the configuration named by --config and builds the logger.
// Logs go to stderr so they never mix with command output.
func setup(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Output.LogLevel
	if override, _ := cmd.Flags().GetString("log-level"); override != "" {
		level = override
	}
	logger := logging.NewLogger(level, cmd.ErrOrStderr())
	logger.WithField("config", path).Debug("configuration loaded")

	return cfg, logger, nil
}
