package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"eventplanner/internal/config"
	"eventplanner/internal/logging"
	"eventplanner/internal/observability"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// Loaded once in PersistentPreRunE and passed down explicitly from there.
var (
	appConfig     *config.AppConfig
	shutdownTrace func(context.Context) error
)

var rootCmd = &cobra.Command{
	Use:   "eventplanner",
	Short: "Plan events from a plain-language request",
	Long: "eventplanner classifies an event request, retrieves similar event templates,\n" +
		"computes budget, guest and schedule details and produces a structured plan.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configPath, "config", "", "Path to YAML config file (default ./config.yaml or ~/.config/eventplanner/config.yaml)")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	f.StringVar(&rootFlags.logFormat, "log-format", "", "Override logging.format (console, json)")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.Version = version
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	if rootFlags.configPath == "" {
		appConfig, _, err = config.LoadDefault()
	} else {
		appConfig, err = config.Load(rootFlags.configPath)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if rootFlags.logLevel != "" {
		appConfig.Logging.Level = rootFlags.logLevel
	}
	if rootFlags.logFormat != "" {
		appConfig.Logging.Format = rootFlags.logFormat
	}
	logging.Init(appConfig.Logging.Level, appConfig.Logging.Format, cmd.ErrOrStderr())

	shutdownTrace, err = observability.Setup(cmd.Context(), observability.Config{
		Endpoint:       appConfig.Tracing.Endpoint,
		ServiceName:    appConfig.Tracing.ServiceName,
		ServiceVersion: version,
		Insecure:       appConfig.Tracing.Insecure,
	})
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	return nil
}

func teardown(cmd *cobra.Command, _ []string) error {
	if shutdownTrace == nil {
		return nil
	}
	return shutdownTrace(context.WithoutCancel(cmd.Context()))
}
