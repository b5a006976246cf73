package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"discchapters/internal/analyzer"
	"discchapters/internal/config"
	"discchapters/internal/report"
)

type scanEntry struct {
	Path   string         `json:"path"`
	Kind   string         `json:"kind"`
	Cached bool           `json:"cached,omitempty"`
	Error  string         `json:"error,omitempty"`
	Report *report.Report `json:"report,omitempty"`
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var workers int

	cmd := &cobra.Command{
		Use:   "scan <disc-root>",
		Short: "Summarise every playlist and title set on a disc",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			format, err := resolveFormat(formatFlag, cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = cfg.Scan.Workers
			}
			runCtx, logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			an, err := ctx.newAnalyzer(runCtx, logger)
			if err != nil {
				return err
			}

			spinner, err := startScanSpinner(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			results, err := an.Scan(runCtx, args[0], workers, spinner.progress)
			spinner.stop(results, err)
			if err != nil {
				return err
			}
			return renderScan(cmd, format, results)
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format: auto, table, tsv or json")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Files parsed in parallel (defaults to [scan] workers)")
	return cmd
}

func renderScan(cmd *cobra.Command, format string, results []analyzer.ScanResult) error {
	out := cmd.OutOrStdout()
	if format == config.OutputJSON {
		entries := make([]scanEntry, 0, len(results))
		for _, r := range results {
			entry := scanEntry{Path: r.File.Path, Kind: string(r.File.Kind), Cached: r.Cached, Report: r.Report}
			if r.Err != nil {
				entry.Error = r.Err.Error()
			}
			entries = append(entries, entry)
		}
		return writeJSON(cmd, entries)
	}

	rows := make([][]string, 0, len(results))
	failed := 0
	for _, r := range results {
		chapters, duration, status := "-", "-", "ok"
		switch {
		case r.Err != nil:
			status = r.Err.Error()
			failed++
		case r.Report != nil:
			chapters = strconv.Itoa(len(r.Report.Rows))
			duration = report.FormatLength(r.Report.Duration)
			if r.Report.Fallback != "" {
				status = fmt.Sprintf("%s from %s", r.Report.Fallback, filepath.Base(r.Report.Source))
			}
			if r.Cached {
				status += " (cached)"
			}
		}
		rows = append(rows, []string{filepath.Base(r.File.Path), string(r.File.Kind), chapters, duration, status})
	}

	if format == config.OutputTSV {
		fmt.Fprintln(out, "File\tKind\tChapters\tDuration\tStatus")
		for _, row := range rows {
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n", row[0], row[1], row[2], row[3], row[4])
		}
		return nil
	}

	footer := []string{fmt.Sprintf("%d files", len(results)), "", "", "", fmt.Sprintf("%d failed", failed)}
	fmt.Fprintln(out, renderTable(
		[]string{"File", "Kind", "Chapters", "Duration", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		footer,
	))
	return nil
}
