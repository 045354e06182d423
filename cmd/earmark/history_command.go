package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"earmark/internal/scrobbles"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		user    string
		period  string
		limit   int
		refresh bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the fetched Last.fm listening history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			store := ctx.openCache(logger)
			if store != nil {
				defer store.Close()
			}
			source, err := ctx.listeningSource(store, logger)
			if err != nil {
				return err
			}

			if strings.TrimSpace(user) == "" {
				user = cfg.Lastfm.User
			}
			if strings.TrimSpace(period) == "" {
				period = cfg.Lastfm.Period
			}
			if limit <= 0 {
				limit = cfg.Lastfm.Limit
			}

			records, err := source.Fetch(cmd.Context(), scrobbles.FetchOptions{
				User:   user,
				Period: period,
				Limit:  limit,
			}, refresh)
			if err != nil {
				return fmt.Errorf("fetch listening history: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, records)
			}

			playsWidth := 0
			for _, record := range records {
				if w := len(humanize.Comma(int64(record.PlayCount))); w > playsWidth {
					playsWidth = w
				}
			}
			for i, record := range records {
				fmt.Fprintf(out, "%4d. %*s  %s - %s\n",
					i+1, playsWidth, humanize.Comma(int64(record.PlayCount)), record.Artist, record.Title)
			}
			fmt.Fprintf(out, "\n%d listening records for %s (%s)\n", len(records), user, period)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Last.fm user (defaults to config)")
	cmd.Flags().StringVar(&period, "period", "", "Listening period: overall, 7day, 1month, 3month, 6month, 12month")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum records to fetch (defaults to config)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass cached API responses")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit records as JSON")

	return cmd
}
