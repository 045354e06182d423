package main

import (
	"github.com/spf13/cobra"

	"earmark/internal/reconcile"
	"earmark/internal/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var (
		user    string
		period  string
		limit   int
		top     int
		refresh bool
		verbose bool
		kinds   []string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "List unrated albums ranked by play count",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
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

			rep, err := reconcile.Run(cmd.Context(), reconcile.Deps{
				Config:   cfg,
				Logger:   logger,
				Source:   source,
				Enricher: ctx.enricher(store, logger),
			}, reconcile.Options{
				User:    user,
				Period:  period,
				Limit:   limit,
				Refresh: refresh,
				Kinds:   kinds,
				Verbose: verbose,
			})
			if err != nil {
				return err
			}

			return report.Render(cmd.OutOrStdout(), rep, report.Options{
				Format:  outputFormat,
				Top:     top,
				Verbose: verbose,
			})
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Last.fm user to reconcile (defaults to config)")
	cmd.Flags().StringVar(&period, "period", "", "Listening period: overall, 7day, 1month, 3month, 6month, 12month")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum listening records to fetch (defaults to config)")
	cmd.Flags().IntVar(&top, "top", 20, "Rows to show, 0 for all")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass cached API responses")
	cmd.Flags().StringSliceVar(&kinds, "kinds", nil, "Keep only these release types, e.g. album,ep (needs MusicBrainz)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show the closest rated candidate per row")
	cmd.Flags().StringVarP(&format, "format", "f", "auto", "Output format: auto, table, plain, json")

	return cmd
}
