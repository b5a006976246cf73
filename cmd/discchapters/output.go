package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"discchapters/internal/config"
)

// resolveFormat picks the output format from the flag, then the config, and
// turns "auto" into table on a terminal and TSV otherwise.
func resolveFormat(flag string, cfg *config.Config, out io.Writer) (string, error) {
	format := strings.ToLower(strings.TrimSpace(flag))
	if format == "" && cfg != nil {
		format = cfg.Output.Format
	}
	switch format {
	case "", config.OutputAuto:
		if isTerminal(out) {
			return config.OutputTable, nil
		}
		return config.OutputTSV, nil
	case config.OutputTable, config.OutputTSV, config.OutputJSON:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected auto, table, tsv or json)", flag)
	}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
