package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"earmark/internal/config"
	"earmark/internal/ratings"
)

func newRatingsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ratings [file]",
		Short: "Summarize the RateYourMusic ratings export",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.Paths.RatingsCSV
			if len(args) == 1 {
				path, err = config.ExpandPath(args[0])
				if err != nil {
					return fmt.Errorf("resolve ratings path: %w", err)
				}
			}

			albums, err := ratings.Load(path)
			if err != nil {
				return fmt.Errorf("load ratings: %w", err)
			}

			artists := make(map[string]struct{}, len(albums))
			var distribution [11]int
			localized := 0
			for _, album := range albums {
				artists[strings.ToLower(album.Artist)] = struct{}{}
				if album.Rating >= 1 && album.Rating <= 10 {
					distribution[album.Rating]++
				}
				if strings.TrimSpace(album.LocalizedArtist) != "" {
					localized++
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Ratings file: %s\n", path)
			fmt.Fprintf(out, "Rated albums: %d across %d artists\n", len(albums), len(artists))
			if localized > 0 {
				fmt.Fprintf(out, "Localized artist names: %d\n", localized)
			}
			fmt.Fprintln(out, "Rating distribution:")
			for rating := 10; rating >= 1; rating-- {
				if distribution[rating] == 0 {
					continue
				}
				fmt.Fprintf(out, "  %2d: %d\n", rating, distribution[rating])
			}
			return nil
		},
	}
}
