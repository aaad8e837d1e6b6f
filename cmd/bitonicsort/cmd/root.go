package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/georrous6/bitonic-sort-mpi/pkg/config"
	"github.com/georrous6/bitonic-sort-mpi/pkg/telemetry"
	"github.com/georrous6/bitonic-sort-mpi/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger           utils.Logger
	cfg              *config.Config
	shutdownTracing  telemetry.ShutdownFunc = func(context.Context) error { return nil }
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "bitonicsort",
	Short: "A distributed bitonic merge-sort engine",
	Long: `bitonicsort runs the distributed bitonic merge-sort algorithm over a
hypercube of P=2^p rank goroutines, each holding a local partition of
N=2^q elements exchanged in batches of B=2^s elements.

It supports timing persistence to a sqlite, postgres or mysql backend and
archives per-run reports to local disk or COS object storage.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := utils.LevelInfo
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		shutdown, err := telemetry.Init(cmd.Context())
		if err != nil {
			logger.Warn("Tracing disabled: %v", err)
		} else {
			shutdownTracing = shutdown
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return shutdownTracing(cmd.Context())
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")

	binName := BinName()
	rootCmd.Example = `  # Sort 8 ranks (2^3) of 1024 elements (2^10) each, batched in 64s (2^6)
  ` + binName + ` run 3 10 6

  # Disable the post-sort validation pass
  ` + binName + ` run 2 8 5 --no-validation

  # Persist the run's timing ledger and archive its report
  ` + binName + ` run 2 8 5 --timing-backend sqlite --report-storage local`
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger {
	return logger
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}
