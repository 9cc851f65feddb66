package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
	"github.com/Chauhan-saab2006/music--app/internal/logger"
	"github.com/Chauhan-saab2006/music--app/internal/service"
)

func newCatalogCommand(opts *rootOptions) *cobra.Command {
	var (
		jsonOut bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate and list the configured catalog",
		Long: `Loads the catalog the player would start with, checks it (unique ids, titles and
media URLs present) and prints its tracks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			log, closer, err := logger.NewLogger(logger.Config{
				Level:  logger.ParseLevel(cfg.Log.Level, slog.LevelWarn),
				Format: cfg.Log.Format,
				Output: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			defer closer.Close()

			catalog := service.NewCatalogService(log, service.NewCatalogSource(cfg.Catalog.Source, log))

			ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
			defer cancel()
			tracks, err := catalog.Load(ctx)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(tracks)
			}
			return printTracks(cmd.OutOrStdout(), catalog.Source().Describe(), tracks)
		},
	}
	cmd.Flags().BoolVarP(&jsonOut, "json", "j", false, "print the tracks as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "give up reading the catalog after this long")
	return cmd
}

func printTracks(out io.Writer, source string, tracks []domain.Track) error {
	fmt.Fprintf(out, "%s: %d tracks\n", source, len(tracks))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tARTIST\tMEDIA")
	for _, t := range tracks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, t.Title, t.Artist, t.MediaURL)
	}
	return w.Flush()
}
