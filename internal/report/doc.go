// Package report turns parser results into chapter rows: per-chapter length,
// running total and a whole-seconds column, plus the one-line summary and TSV
// rendering used by the CLI.
package report
