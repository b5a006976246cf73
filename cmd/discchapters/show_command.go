package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"discchapters/internal/config"
	"discchapters/internal/report"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var rowsFlag string

	cmd := &cobra.Command{
		Use:   "show <file-or-disc-root>",
		Short: "Print the chapter list for a playlist, title set or disc root",
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
			runCtx, logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			an, err := ctx.newAnalyzer(runCtx, logger)
			if err != nil {
				return err
			}

			rep, err := an.Analyze(runCtx, args[0])
			if err != nil {
				return err
			}
			rows, err := report.Select(rep.Rows, rowsFlag)
			if err != nil {
				return err
			}
			return renderReport(cmd, format, rep, rows)
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format: auto, table, tsv or json")
	cmd.Flags().StringVar(&rowsFlag, "rows", "", "Only print these chapters, e.g. 2-4,7")
	return cmd
}

func renderReport(cmd *cobra.Command, format string, rep *report.Report, rows []report.Row) error {
	out := cmd.OutOrStdout()
	switch format {
	case config.OutputJSON:
		view := *rep
		view.Rows = rows
		return writeJSON(cmd, view)
	case config.OutputTSV:
		return report.WriteTSV(out, rows)
	}

	fmt.Fprintln(out, rep.Summary())
	if len(rows) == 0 {
		fmt.Fprintln(out, "No chapters found")
		return nil
	}
	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{
			strconv.Itoa(row.Number),
			report.FormatLength(row.Length),
			report.FormatLength(row.Cumulative),
			strconv.Itoa(row.Seconds),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Length", "Cumulative", "Seconds"},
		table,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
		nil,
	))
	return nil
}
