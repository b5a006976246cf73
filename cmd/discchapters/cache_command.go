package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"discchapters/internal/config"
	"discchapters/internal/resultcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the parse result cache",
	}
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			format, err := resolveFormat(formatFlag, cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			store, err := ctx.openCache(commandCtx(cmd))
			if err != nil {
				return err
			}
			entries, err := store.List(commandCtx(cmd))
			if err != nil {
				return err
			}
			return renderCacheEntries(cmd, format, store.Path(), entries)
		},
	}
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format: auto, table, tsv or json")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached result",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCache(commandCtx(cmd))
			if err != nil {
				return err
			}
			removed, err := store.Clear(commandCtx(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached result(s) from %s\n", removed, store.Path())
			return nil
		},
	}
}

func renderCacheEntries(cmd *cobra.Command, format, path string, entries []resultcache.Entry) error {
	out := cmd.OutOrStdout()
	switch format {
	case config.OutputJSON:
		return writeJSON(cmd, entries)
	case config.OutputTSV:
		fmt.Fprintln(out, "Path\tKind\tChapters\tCached")
		for _, e := range entries {
			fmt.Fprintf(out, "%s\t%s\t%d\t%s\n", e.Path, e.Kind, e.Chapters, e.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintf(out, "Cache %s is empty\n", path)
		return nil
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Path, e.Kind, strconv.Itoa(e.Chapters), e.CreatedAt.Format("2006-01-02 15:04:05")})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Path", "Kind", "Chapters", "Cached"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
		nil,
	))
	return nil
}
