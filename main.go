package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the storefront command tree.
func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront front-end service for the catalog backend",
		Long: `Storefront serves the public catalog, product pages, contact form and the
admin panel as a JSON API on top of the catalog backend.

Configuration is read from environment variables (BACKEND_URL, APP_PORT,
SESSION_DB_DRIVER, SESSION_DB_DSN, RABBITMQ_URL, ...) and optionally from a
config file given with --config.

The admin session is persisted in the session database and shared between
"storefront serve" and the login/logout/whoami commands.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")

	load := func() (config.Config, error) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return cfg, err
		}
		logger.Init("storefront", cfg.IsDevelopment(), cfg.LogLevel)
		return cfg, nil
	}

	root.AddCommand(
		newServeCmd(load),
		newLoginCmd(load),
		newLogoutCmd(load),
		newWhoamiCmd(load),
	)
	return root
}

type configLoader func() (config.Config, error)

func newServeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			a, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to create app: %w", err)
			}
			defer func() {
				if err := a.Close(); err != nil {
					logger.Error(cmd.Context()).Err(err).Msg("Error releasing resources")
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.Serve(ctx)
		},
	}
}

// withCore runs fn with the backend client and the persisted session.
func withCore(load configLoader, fn func(cmd *cobra.Command, core *app.Core) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := load()
		if err != nil {
			return err
		}
		core, err := app.NewCore(cfg)
		if err != nil {
			return err
		}
		defer core.Close()
		return fn(cmd, core)
	}
}
