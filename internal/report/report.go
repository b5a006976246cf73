package report

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"discchapters/internal/disc"
	"discchapters/internal/ifo"
	"discchapters/internal/mpls"
)

// Row is one chapter (Blu-ray) or program (DVD).
type Row struct {
	Number     int           `json:"number"`
	Length     time.Duration `json:"length_ns"`
	Cumulative time.Duration `json:"cumulative_ns"`
	// Seconds is the corrected rounded length on Blu-ray and the ceiling of
	// the length on DVD.
	Seconds int `json:"seconds"`
}

// Report is the chapter list for one input file.
type Report struct {
	Path     string        `json:"path"`
	Source   string        `json:"source"`
	Kind     disc.Kind     `json:"kind"`
	Fallback string        `json:"fallback,omitempty"`
	Duration time.Duration `json:"duration_ns"`

	PlayItems int `json:"play_items,omitempty"`
	Marks     int `json:"marks,omitempty"`
	Programs  int `json:"programs,omitempty"`
	Cells     int `json:"cells,omitempty"`

	Rows []Row `json:"rows"`
}

// FromPlaylist builds a report for a Blu-ray playlist.
func FromPlaylist(path string, res mpls.Result) *Report {
	rep := &Report{
		Path:      path,
		Source:    res.Source,
		Kind:      disc.KindBluray,
		Fallback:  res.Fallback,
		Duration:  res.PlaylistDuration,
		PlayItems: res.PlayItemCount,
		Marks:     res.MarkCount,
		Rows:      make([]Row, 0, len(res.Chapters)),
	}
	if rep.Source == "" {
		rep.Source = path
	}
	var acc time.Duration
	for i, ch := range res.Chapters {
		acc += ch.Length
		rep.Rows = append(rep.Rows, Row{Number: i + 1, Length: ch.Length, Cumulative: acc, Seconds: ch.Seconds})
	}
	return rep
}

// FromIFO builds a report for a DVD title set.
func FromIFO(path string, res *ifo.Result) *Report {
	rep := &Report{
		Path:     path,
		Source:   path,
		Kind:     disc.KindDVD,
		Duration: res.Total(),
		Programs: len(res.Programs),
		Cells:    len(res.Cells),
		Rows:     make([]Row, 0, len(res.Programs)),
	}
	var acc time.Duration
	for i, d := range res.Programs {
		acc += d
		rep.Rows = append(rep.Rows, Row{Number: i + 1, Length: d, Cumulative: acc, Seconds: ceilSeconds(d)})
	}
	return rep
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

// Summary is the one-line description shown above the chapter list.
func (r *Report) Summary() string {
	name := filepath.Base(r.Path)
	if r.Kind == disc.KindDVD {
		return fmt.Sprintf("%s - (DVD) Programs: %d   Cells: %d", name, r.Programs, r.Cells)
	}
	line := fmt.Sprintf("%s - (Blu-ray) Items: %d   Marks: %d   Duration: %s", name, r.PlayItems, r.Marks, FormatLength(r.Duration))
	if r.Source != "" && r.Source != r.Path {
		line += fmt.Sprintf("   (chapters from %s)", filepath.Base(r.Source))
	}
	return line
}

// FormatLength renders d as HH:MM:SS.ff with truncated hundredths. Hours are
// not wrapped at 24.
func FormatLength(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hundredths := int64(d / (10 * time.Millisecond))
	h := hundredths / 360000
	m := hundredths / 6000 % 60
	s := hundredths / 100 % 60
	f := hundredths % 100
	return fmt.Sprintf("%02d:%02d:%02d.%02d", h, m, s, f)
}
