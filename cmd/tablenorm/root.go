package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/statement-tables/internal/common"
)

var (
	tuningFile string
	dbURL      string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "tablenorm",
	Short: "Link, classify, normalize and score commission-statement tables",
	Long: `tablenorm takes the per-page table output of a document extractor, links page
fragments into logical tables, flags summary rows, rewrites accounting-bracket negatives
and scores each table's quality.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&tuningFile, "tuning", "", "YAML tuning file used in place of TUNING_FILE")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "database DSN, e.g. sqlite::memory: or postgres://... (overrides DB_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: json or text (overrides LOG_FORMAT)")
}

// loadConfig resolves env configuration, applies the persistent flags and builds the logger.
// Logs go to stderr so stdout stays machine readable.
func loadConfig() (*common.Config, *slog.Logger, error) {
	cfg, err := common.LoadConfigWithTuningFile(tuningFile)
	if err != nil {
		return nil, nil, err
	}
	if dbURL != "" {
		cfg.Database.DSN = dbURL
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger := common.NewLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
