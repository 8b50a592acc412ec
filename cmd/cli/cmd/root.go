package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/schelling-sim/cs-engine/pkg/pprof"
	"github.com/schelling-sim/cs-engine/pkg/utils"
)

var (
	// Global flags
	verbose bool
	logger  utils.Logger

	// Pprof flags
	pprofEnabled     bool
	pprofMode        string
	pprofDir         string
	pprofProfiles    string
	pprofInterval    string
	pprofCPUDuration string
	pprofCPURate     int
	pprofAddr        string

	// Pprof collector
	pprofCollector *pprof.Collector
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cs-engine",
	Short: "A parallel Monte-Carlo engine for the Schelling segregation process",
	Long: `cs-engine runs many independent Schelling segregation simulations
across a worker pool, aggregates the fraction of unhappy agents at a
log-spaced schedule of checkpoints, and stops each experiment the moment
an anytime-valid confidence sequence certifies the estimate within
tolerance.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := utils.LevelInfo
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stderr)

		if pprofEnabled {
			cfg, err := buildPprofConfig()
			if err != nil {
				return err
			}

			collector, err := pprof.NewCollector(cfg)
			if err != nil {
				return err
			}

			if err := collector.Start(); err != nil {
				return err
			}

			pprofCollector = collector
			logger.Info("pprof collection started (mode: %s, dir: %s)", cfg.Mode, cfg.OutputDir)
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if pprofCollector != nil {
			logger.Info("Stopping pprof collection...")
			if err := pprofCollector.Stop(); err != nil {
				logger.Warn("Failed to stop pprof collector: %v", err)
			}
			logger.Info("pprof data saved to: %s", pprofCollector.Writer().GetOutputDir())
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if code := ExitCodeOf(err); code != 0 {
			os.Exit(code)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.PersistentFlags().BoolVar(&pprofEnabled, "pprof", false, "Enable pprof performance profiling")
	rootCmd.PersistentFlags().StringVar(&pprofMode, "pprof-mode", "file", "Pprof mode: file (periodic snapshots) or http (on-demand)")
	rootCmd.PersistentFlags().StringVar(&pprofDir, "pprof-dir", "./pprof", "Output directory for pprof data")
	rootCmd.PersistentFlags().StringVar(&pprofProfiles, "pprof-profiles", "cpu,heap,goroutine", "Comma-separated profile types: cpu,heap,goroutine,block,mutex,allocs")
	rootCmd.PersistentFlags().StringVar(&pprofInterval, "pprof-interval", "30s", "Snapshot interval for file mode")
	rootCmd.PersistentFlags().StringVar(&pprofCPUDuration, "pprof-cpu-duration", "10s", "CPU profile duration per snapshot")
	rootCmd.PersistentFlags().IntVar(&pprofCPURate, "pprof-cpu-rate", 100, "CPU profiling rate in Hz")
	rootCmd.PersistentFlags().StringVar(&pprofAddr, "pprof-addr", ":6060", "HTTP listen address for http mode")

	binName := BinName()
	rootCmd.Example = `  # Run a torus experiment with the default move rule
  ` + binName + ` run --graph torus --size 128x128

  # Run a lollipop experiment with the first-accepting move rule
  ` + binName + ` run --graph lollipop --size 64:2000 --move first --threshold 0.4

  # Load base settings from a file, override eps on the command line
  ` + binName + ` run --config ./experiment.yaml --eps 1e-3

  # Enable pprof profiling during a run
  ` + binName + ` run --graph torus --size 256x256 --pprof --pprof-profiles cpu,heap`
}

// GetLogger returns the configured logger
func GetLogger() utils.Logger {
	return logger
}

// BinName returns the base name of the current executable
func BinName() string {
	return filepath.Base(os.Args[0])
}

// buildPprofConfig builds pprof configuration from command line flags.
func buildPprofConfig() (*pprof.Config, error) {
	cfg := pprof.DefaultConfig()
	cfg.Enabled = true
	cfg.OutputDir = pprofDir

	switch pprofMode {
	case "file":
		cfg.Mode = pprof.ModeFile
	case "http":
		cfg.Mode = pprof.ModeHTTP
	default:
		return nil, fmt.Errorf("invalid pprof mode: %q (valid: file, http)", pprofMode)
	}

	profiles, err := pprof.ParseProfileTypes(pprofProfiles)
	if err != nil {
		return nil, err
	}
	cfg.Profiles = profiles

	interval, err := time.ParseDuration(pprofInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid pprof interval: %w", err)
	}
	cfg.FileConfig.Interval = interval

	cpuDuration, err := time.ParseDuration(pprofCPUDuration)
	if err != nil {
		return nil, fmt.Errorf("invalid pprof CPU duration: %w", err)
	}
	cfg.FileConfig.CPUDuration = cpuDuration
	cfg.FileConfig.CPURate = pprofCPURate

	cfg.HTTPConfig.Addr = pprofAddr

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
