package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/avasile/crosscheck/internal/logging"
	"github.com/avasile/crosscheck/pkg/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:     "crosscheck",
	Short:   "Plagiarism analysis report engine",
	Version: version,
	Long: `Crosscheck turns JPlag result archives into queryable analysis
reports: per-submission statistics, pairwise comparisons with highlighted
matches, similarity clusters with risk classification, and distribution
statistics.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "Output format (text, json, markdown)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Write output to file instead of stdout")
}

// loadConfig layers the optional config file over defaults. The
// --verbose flag lowers the log level regardless of the file.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.Pretty = true
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(cfg.Logging.Level, cfg.Logging.Pretty)
}

func getFormat(cmd *cobra.Command) string {
	format, _ := cmd.Flags().GetString("format")
	return format
}

func getOutputFile(cmd *cobra.Command) string {
	output, _ := cmd.Flags().GetString("output")
	return output
}
