package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/nvandessel/polisim/internal/config"
	"github.com/nvandessel/polisim/internal/logging"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "polisim",
		Short: "Polisim - influence-driven voting simulation",
		Long: `polisim simulates opinion propagation in a deliberative body.

Members hold ideal points in an N-dimensional issue space and are
connected by weighted influence edges. Given a proposal vector, polisim
scores each member, propagates peer and party pressure over bounded
rounds, and reports the final votes.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for machine consumption)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ~/.polisim/config.yaml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newSweepCmd(),
		newValidateCmd(),
		newRankCmd(),
		newHistoryCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return printJSON(cmd, map[string]string{"version": version})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "polisim version %s\n", version)
			return nil
		},
	}
}

// loadConfig loads the effective configuration: the --config file when
// given, otherwise the defaults plus ~/.polisim/config.yaml and
// POLISIM_* environment overrides.
func loadConfig(cmd *cobra.Command) (*config.PolisimConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
		return cfg, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLoggerFromConfig builds the stderr logger at the configured level.
func newLoggerFromConfig(cfg *config.PolisimConfig) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, os.Stderr)
}

// printJSON encodes v to the command's stdout as a single JSON document.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
