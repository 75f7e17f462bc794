package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/born-ml/tapegrad/internal/runlog"
)

// Global flag values.
var flagConfig string

// Set by PersistentPreRunE for every subcommand.
var (
	cfg    *viper.Viper
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tapegrad",
	Short: "tapegrad is a gradient-tape autodiff toolkit",
	Long: `tapegrad records differentiable tensor operations on a gradient tape and
replays them in reverse to compute gradients. The CLI fits a small model,
checks analytic gradients against finite differences, and lists logged runs.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, err := loadConfig(flagConfig, cmd.Flags())
		if err != nil {
			return err
		}
		l, err := newLogger(cmd.ErrOrStderr(), v.GetString(cfgKeyLogLevel))
		if err != nil {
			return err
		}
		cfg, logger = v, l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ./tapegrad.yaml)")
	rootCmd.PersistentFlags().String(cfgKeyLogLevel, "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String(cfgKeyDB, "", "run log database path (empty disables the run log)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(runsCmd)
}

// openRunLog opens the configured run log, or returns nil when none is set.
func openRunLog() (*runlog.Store, error) {
	path := cfg.GetString(cfgKeyDB)
	if path == "" {
		return nil, nil
	}
	store, err := runlog.Open(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("run log opened", "path", path)
	return store, nil
}
