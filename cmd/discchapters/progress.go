package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/theckman/yacspin"
	"golang.org/x/term"

	"discchapters/internal/analyzer"
)

const defaultTerminalWidth = 80

// scanSpinner shows scan progress on an interactive stderr. The zero value
// is inactive and every method is a no-op.
type scanSpinner struct {
	spinner *yacspin.Spinner
	width   int
}

func startScanSpinner(w io.Writer) (*scanSpinner, error) {
	file, ok := w.(*os.File)
	if !ok || !isTerminal(file) {
		return &scanSpinner{}, nil
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		width = defaultTerminalWidth
	}

	spinner, err := yacspin.New(yacspin.Config{
		Writer:            file,
		Frequency:         100 * time.Millisecond,
		CharSet:           yacspin.CharSets[14],
		Suffix:            " scanning",
		Colors:            []string{"fgHiCyan"},
		StopColors:        []string{"fgHiGreen"},
		StopFailColors:    []string{"fgHiRed"},
		StopCharacter:     "✓",
		StopFailCharacter: "✗",
	})
	if err != nil {
		return nil, fmt.Errorf("create spinner: %w", err)
	}
	if err := spinner.Start(); err != nil {
		return nil, fmt.Errorf("start spinner: %w", err)
	}
	return &scanSpinner{spinner: spinner, width: width}, nil
}

func (s *scanSpinner) progress(done, total int, result analyzer.ScanResult) {
	if s.spinner == nil {
		return
	}
	prefix := fmt.Sprintf(" [%d/%d] ", done, total)
	s.spinner.Message(prefix + truncateLeft(filepath.Base(result.File.Path), s.width-len(prefix)-16))
}

func (s *scanSpinner) stop(results []analyzer.ScanResult, err error) {
	if s.spinner == nil {
		return
	}
	if err != nil {
		s.spinner.StopFailMessage(" " + err.Error())
		_ = s.spinner.StopFail()
		return
	}
	s.spinner.StopMessage(fmt.Sprintf(" %d files", len(results)))
	_ = s.spinner.Stop()
}

// truncateLeft keeps the tail of value, marking the cut with "...". Widths
// count runes so multi-byte names are never split.
func truncateLeft(value string, max int) string {
	if max < 10 {
		max = 10
	}
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return "..." + string(runes[len(runes)-(max-3):])
}
