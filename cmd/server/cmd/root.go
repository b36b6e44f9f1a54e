package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"sportsregistration/config"
)

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "server",
		Short: "Sports event registration server",
		Long: `Sports event registration server.

Admins publish sports events; users sign up, browse events and register
for them individually or as a team.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file (overrides CONFIG_FILE)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error) (default: LOG_LEVEL or info)")

	root.AddCommand(newServeCommand(flags))
	root.AddCommand(newMigrateCommand(flags))
	root.AddCommand(newCreateAdminCommand(flags))
	root.AddCommand(newVersionCommand())

	// Run serve by default if no subcommand is specified
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), flags, false)
	}
	return root
}

// load reads configuration and builds the logger, applying global flag overrides.
func (f *globalFlags) load() (*config.Config, *slog.Logger, error) {
	if f.configPath != "" {
		if err := os.Setenv("CONFIG_FILE", f.configPath); err != nil {
			return nil, nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config error: %w", err)
	}
	level := f.logLevel
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	return cfg, config.NewLoggerTo(os.Stdout, cfg.Environment, level), nil
}
