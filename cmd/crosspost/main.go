// Package main implements the crosspost CLI.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"crosspost/internal/config"
	"crosspost/internal/logging"
	"crosspost/internal/ux"
)

var (
	// Global flags
	verbose    bool
	configPath string
	simulate   bool

	// Set up in PersistentPreRunE
	logger  *zap.Logger
	loggers *logging.Loggers
	cfg     *config.Config

	// Operator-facing streams, swapped in tests
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "crosspost",
	Short: "Prepare a Markdown article in the web editors of juejin, CSDN and WeChat",
	Long: `crosspost drives a real Chrome window with a persistent profile, fills each
platform's editor with your article and stops at the publish dialog.

Nothing is published without you: log in when asked, check every tab, and press
publish yourself.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if simulate {
			cfg.Browser.Simulated = true
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", configPath, err)
		}

		loggers, err = logging.New(logger, cfg.Logging.Options())
		if err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		loggers.Get(logging.CategoryBoot).Debug("config loaded",
			zap.String("path", configPath),
			zap.Bool("simulated", cfg.Browser.Simulated))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if loggers != nil {
			_ = loggers.Close()
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath(), "Config file")
	rootCmd.PersistentFlags().BoolVar(&simulate, "simulate", false, "Use a simulated browser (or set CROSSPOST_SIMULATE=1)")

	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(platformsCmd)
	rootCmd.AddCommand(configCmd)
}

func newConsole() *ux.Console {
	return ux.NewConsole(stdout, ux.NewStyles(ux.DetectTheme()))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
