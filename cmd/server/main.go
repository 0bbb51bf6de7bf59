// fxconv serves live currency conversion backed by exchangeratesapi.io.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/damon-houk/fxconv/internal/application/service"
	"github.com/damon-houk/fxconv/internal/config"
	"github.com/damon-houk/fxconv/internal/domain/entity"
	"github.com/damon-houk/fxconv/internal/infrastructure/logger"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var (
	cfg *config.Config
	log logger.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "fxconv",
	Short:         "Currency conversion with live, cached and fallback exchange rates",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		// Logs go to stderr so command output stays pipeable
		logger.SetDefaultLogger(logger.NewJSONLogger(os.Stderr, logger.ParseLevel(cfg.Logging.Level)))
		log = logger.GetDefaultLogger().WithField("version", version)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml or ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(historyCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fxconv %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// normalizeCode upper-cases a currency code argument
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// resolveBase picks the --base flag when given, else the configured default
func resolveBase(flagBase, defaultBase string) (string, error) {
	base := defaultBase
	if flagBase != "" {
		base = normalizeCode(flagBase)
	}
	if !entity.IsCurrencyCode(base) {
		return "", fmt.Errorf("%w: %q", service.ErrInvalidCurrency, base)
	}
	return base, nil
}
