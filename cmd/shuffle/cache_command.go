package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"shuffle/internal/config"
	"shuffle/internal/sourcecache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the resolution cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached item resolutions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(ctx, func(store *sourcecache.Store) error {
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					if entries == nil {
						entries = []sourcecache.Entry{}
					}
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No cached resolutions")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				now := time.Now()
				for _, entry := range entries {
					rows = append(rows, []string{entry.ItemID, entry.SourceID, humanize.RelTime(entry.ResolvedAt, now, "ago", "from now")})
				}
				fmt.Fprintln(out, renderTable([]string{"Item", "Source", "Resolved"}, rows, nil))
				fmt.Fprintf(out, "%d cached resolution(s) in %s\n", len(entries), store.Path())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output entries as JSON")
	return cmd
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item-id>...",
		Short: "Forget the cached resolution of items",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(ctx, func(store *sourcecache.Store) error {
				out := cmd.OutOrStdout()
				for _, id := range args {
					removed, err := store.Remove(cmd.Context(), id)
					if err != nil {
						return err
					}
					if removed {
						fmt.Fprintf(out, "Removed %s\n", id)
					} else {
						fmt.Fprintf(out, "%s was not cached\n", id)
					}
				}
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached resolution",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(ctx, func(store *sourcecache.Store) error {
				count, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached resolution(s)\n", count)
				return nil
			})
		},
	}
}

func withCache(ctx *commandContext, fn func(*sourcecache.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if err := requireCache(cfg); err != nil {
		return err
	}
	store, err := ctx.openCache(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func requireCache(cfg *config.Config) error {
	if !cfg.Cache.Enabled {
		return errors.New("resolution cache is disabled (set cache.enabled = true)")
	}
	return nil
}
