package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/novella/internal/config"
	"github.com/aretw0/novella/internal/logging"
)

var (
	appConfig *config.Config
	appLogger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "novella",
	Short: "Novella is a server-driven engine for branching, localized stories",
	Long: `Novella plays visual-novel style stories written as YAML node graphs.
Serve them over HTTP, play them in the terminal, or hand them to an AI agent over MCP.

Settings come from NOVELLA_* environment variables (and an optional .env file);
flags take precedence.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("dir", "", "Content directory (default $NOVELLA_CONTENT_DIR or content/vn-story)")
	flags.String("content-version", "", "Content version directory (default $NOVELLA_CONTENT_VERSION or v1)")
	flags.String("default-locale", "", "Locale used when none is requested (default $NOVELLA_DEFAULT_LOCALE or en-US)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: text or json")
}

// loadConfig reads the environment, applies flag overrides and builds the logger.
func loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	override := func(flag string, dst *string) {
		if cmd.Flags().Changed(flag) {
			*dst, _ = cmd.Flags().GetString(flag)
		}
	}
	override("dir", &cfg.ContentDir)
	override("content-version", &cfg.ContentVersion)
	override("default-locale", &cfg.DefaultLocale)
	override("log-level", &cfg.LogLevel)
	override("log-format", &cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := logging.FromConfig(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	appConfig, appLogger = cfg, logger
	return nil
}
