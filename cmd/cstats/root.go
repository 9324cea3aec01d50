package main

import (
	"os"

	"github.com/spf13/cobra"

	"cstats/internal/config"
	"cstats/internal/version"
)

var (
	logLevelFlag  string
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "cstats",
	Short: "cstats - conversation corpus statistics engine",
	Long: `cstats reduces a year of per-conversation metadata records into one
deterministic aggregate snapshot for the dashboard: distributions, quantiles,
temporal activity, entity rankings, per-score statistics, serendipity and a
domain treemap.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("cstats version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, error (default: from config)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: json or human (default: from config)")
}

// loadConfig reads .cstats/config.json from the working directory and
// applies the CSTATS_* environment overrides.
// Precedence: flags > environment > config file > defaults.
func loadConfig() (*config.Config, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(workDir)
	if err != nil {
		return nil, err
	}

	if env := os.Getenv("CSTATS_CORPUS"); env != "" {
		cfg.CorpusDir = env
	}
	if env := os.Getenv("CSTATS_OUTPUT"); env != "" {
		cfg.Output = env
	}
	if env := os.Getenv("CSTATS_LOG_LEVEL"); env != "" {
		cfg.Logging.Level = env
	}
	if env := os.Getenv("CSTATS_LOG_FORMAT"); env != "" {
		cfg.Logging.Format = env
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
