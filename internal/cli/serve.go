package cli

import (
	"github.com/spf13/cobra"

	"github.com/Chauhan-saab2006/music--app/internal/config"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the player UI to browsers",
		Long: `Starts the HTTP server with the browser UI. Audio plays in the browser tab that
connected first; every other tab mirrors the player and can control it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			cfg.UI.Mode = config.ModeWeb
			if addr != "" {
				cfg.Web.Addr = addr
			}
			return runApplication(cmd, cfg)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config, :8080)")
	return cmd
}

func newDesktopCommand(opts *rootOptions) *cobra.Command {
	var audio string

	cmd := &cobra.Command{
		Use:   "desktop",
		Short: "Open the player in a desktop window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			cfg.UI.Mode = config.ModeDesktop
			if audio != "" {
				cfg.Audio.Backend = audio
			}
			return runApplication(cmd, cfg)
		},
	}
	cmd.Flags().StringVar(&audio, "audio", "", "audio backend: beep or mock")
	return cmd
}
