// Package cli implements the tunedeck command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Chauhan-saab2006/music--app/internal/app"
	"github.com/Chauhan-saab2006/music--app/internal/config"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	envFile    string
	logLevel   string
	catalog    string
}

// NewRootCommand builds the tunedeck command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "tunedeck",
		Short: "A playlist music player",
		Long: `tunedeck plays a catalog of tracks with shuffle, repeat, search and keyboard control.
It runs as a browser UI served over HTTP or as a desktop window.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (default: ./tunedeck.toml or the user config dir)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file with TUNEDECK_* overrides")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: DEBUG, INFO, WARN or ERROR")
	flags.StringVar(&opts.catalog, "catalog", "", "catalog file (.json, .toml) or music folder")

	root.AddCommand(
		newServeCommand(opts),
		newDesktopCommand(opts),
		newCatalogCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration and applies the persistent flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configFile, o.envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.catalog != "" {
		cfg.Catalog.Source = o.catalog
	}
	return cfg, nil
}

// runApplication builds the application and runs it until the context is
// cancelled, an interrupt arrives or the desktop window closes.
func runApplication(cmd *cobra.Command, cfg *config.Config) (err error) {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApplication(cfg, app.Options{LogOutput: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := application.Shutdown(); err == nil {
			err = shutdownErr
		}
	}()

	return application.Run(ctx)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
