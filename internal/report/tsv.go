package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TSVHeader is the first line of every TSV export.
const TSVHeader = "#\tLength (hh:mm:ss.ff)\tCumulative\tSeconds (ceil)"

// ErrBadSelection is returned for malformed or out-of-range row selections.
var ErrBadSelection = errors.New("invalid row selection")

// WriteTSV writes the header and one line per row.
func WriteTSV(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, TSVHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(bw, "%d\t%s\t%s\t%d\n",
			row.Number, FormatLength(row.Length), FormatLength(row.Cumulative), row.Seconds); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Select returns the rows named by selection, a comma separated list of 1-based
// numbers and inclusive ranges such as "2-4,7". An empty selection picks every
// row. Rows keep their table order and appear once.
func Select(rows []Row, selection string) ([]Row, error) {
	selection = strings.TrimSpace(selection)
	if selection == "" {
		return rows, nil
	}
	picked := make([]bool, len(rows))
	for _, part := range strings.Split(selection, ",") {
		part = strings.TrimSpace(part)
		lo, hi, err := parseRange(part)
		if err != nil {
			return nil, err
		}
		if lo < 1 || hi > len(rows) || lo > hi {
			return nil, fmt.Errorf("%w: %q outside 1-%d", ErrBadSelection, part, len(rows))
		}
		for i := lo; i <= hi; i++ {
			picked[i-1] = true
		}
	}
	out := make([]Row, 0, len(rows))
	for i, ok := range picked {
		if ok {
			out = append(out, rows[i])
		}
	}
	return out, nil
}

func parseRange(part string) (int, int, error) {
	first, last, isRange := strings.Cut(part, "-")
	lo, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadSelection, part)
	}
	if !isRange {
		return lo, lo, nil
	}
	hi, err := strconv.Atoi(strings.TrimSpace(last))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadSelection, part)
	}
	return lo, hi, nil
}
