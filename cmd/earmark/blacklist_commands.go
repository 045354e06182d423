package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"earmark/internal/blacklist"
)

func newBlacklistCommand(ctx *commandContext) *cobra.Command {
	blacklistCmd := &cobra.Command{
		Use:   "blacklist",
		Short: "Maintain the album exclusion list",
	}

	blacklistCmd.AddCommand(newBlacklistListCommand(ctx))
	blacklistCmd.AddCommand(newBlacklistAddCommand(ctx))
	blacklistCmd.AddCommand(newBlacklistRemoveCommand(ctx))

	return blacklistCmd
}

func newBlacklistListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show excluded albums",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			list, err := blacklist.Load(cfg.Paths.BlacklistFile)
			if err != nil {
				return fmt.Errorf("load blacklist: %w", err)
			}

			out := cmd.OutOrStdout()
			entries := list.Entries()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Blacklist is empty")
				return nil
			}
			for _, entry := range entries {
				if entry.Reason != "" {
					fmt.Fprintf(out, "%s - %s (%s)\n", entry.Artist, entry.Title, entry.Reason)
					continue
				}
				fmt.Fprintf(out, "%s - %s\n", entry.Artist, entry.Title)
			}
			fmt.Fprintf(out, "\n%d excluded albums\n", len(entries))
			return nil
		},
	}
}

func newBlacklistAddCommand(ctx *commandContext) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "add <artist> <album>",
		Short: "Exclude an album from reports",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			list, err := blacklist.Load(cfg.Paths.BlacklistFile)
			if err != nil {
				return fmt.Errorf("load blacklist: %w", err)
			}

			entry := blacklist.Entry{Artist: args[0], Title: args[1], Reason: reason}
			out := cmd.OutOrStdout()
			if !list.Add(entry) {
				fmt.Fprintf(out, "%s - %s is already excluded\n", entry.Artist, entry.Title)
				return nil
			}
			if err := list.Save(cfg.Paths.BlacklistFile); err != nil {
				return fmt.Errorf("save blacklist: %w", err)
			}
			fmt.Fprintf(out, "Excluded %s - %s\n", entry.Artist, entry.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Optional note on why the album is excluded")
	return cmd
}

func newBlacklistRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <artist> <album>",
		Short: "Stop excluding an album",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			list, err := blacklist.Load(cfg.Paths.BlacklistFile)
			if err != nil {
				return fmt.Errorf("load blacklist: %w", err)
			}

			out := cmd.OutOrStdout()
			if !list.Remove(args[0], args[1]) {
				fmt.Fprintf(out, "%s - %s was not excluded\n", args[0], args[1])
				return nil
			}
			if err := list.Save(cfg.Paths.BlacklistFile); err != nil {
				return fmt.Errorf("save blacklist: %w", err)
			}
			fmt.Fprintf(out, "Removed %s - %s from the blacklist\n", args[0], args[1])
			return nil
		},
	}
}
