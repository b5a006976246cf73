package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"discchapters/internal/disc"
	"discchapters/internal/ifo"
	"discchapters/internal/mpls"
)

func TestFormatLength(t *testing.T) {
	cases := map[time.Duration]string{
		0:                                     "00:00:00.00",
		1500 * time.Millisecond:               "00:00:01.50",
		59*time.Second + 999*time.Millisecond: "00:00:59.99",
		90*time.Minute + 5*time.Second:        "01:30:05.00",
		26 * time.Hour:                        "26:00:00.00",
		-time.Second:                          "00:00:00.00",
	}
	for in, want := range cases {
		if got := FormatLength(in); got != want {
			t.Fatalf("FormatLength(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFromPlaylistAccumulates(t *testing.T) {
	res := mpls.Result{
		Chapters: []mpls.Chapter{
			{Length: 90 * time.Second, Seconds: 89},
			{Length: 600 * time.Second, Seconds: 600},
			{Length: 30500 * time.Millisecond, Seconds: 30},
		},
		PlaylistDuration: 720500 * time.Millisecond,
		PlayItemCount:    2,
		MarkCount:        4,
		Source:           "/disc/BDMV/PLAYLIST/00001.mpls",
		Fallback:         mpls.FallbackNextNumbered,
	}
	rep := FromPlaylist("/disc/BDMV/PLAYLIST/00000.mpls", res)
	if rep.Kind != disc.KindBluray || len(rep.Rows) != 3 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if rep.Rows[2].Cumulative != 720500*time.Millisecond || rep.Rows[2].Number != 3 {
		t.Fatalf("unexpected last row %+v", rep.Rows[2])
	}
	want := "00000.mpls - (Blu-ray) Items: 2   Marks: 4   Duration: 00:12:00.50   (chapters from 00001.mpls)"
	if got := rep.Summary(); got != want {
		t.Fatalf("summary = %q\nwant      %q", got, want)
	}
}

func TestFromIFOUsesCeilingSeconds(t *testing.T) {
	res := &ifo.Result{
		Programs: []time.Duration{61*time.Second + 40*time.Millisecond, 120 * time.Second},
		Cells:    []time.Duration{30 * time.Second, 31*time.Second + 40*time.Millisecond, 120 * time.Second},
	}
	rep := FromIFO("/disc/VIDEO_TS/VTS_01_0.IFO", res)
	if rep.Rows[0].Seconds != 62 || rep.Rows[1].Seconds != 120 {
		t.Fatalf("unexpected seconds %+v", rep.Rows)
	}
	if rep.Duration != 181*time.Second+40*time.Millisecond {
		t.Fatalf("unexpected duration %v", rep.Duration)
	}
	if got, want := rep.Summary(), "VTS_01_0.IFO - (DVD) Programs: 2   Cells: 3"; got != want {
		t.Fatalf("summary = %q, want %q", got, want)
	}
}

func TestWriteTSV(t *testing.T) {
	rows := []Row{
		{Number: 1, Length: 90 * time.Second, Cumulative: 90 * time.Second, Seconds: 89},
		{Number: 2, Length: 31 * time.Second, Cumulative: 121 * time.Second, Seconds: 30},
	}
	var buf bytes.Buffer
	if err := WriteTSV(&buf, rows); err != nil {
		t.Fatalf("WriteTSV returned error: %v", err)
	}
	want := TSVHeader + "\n" +
		"1\t00:01:30.00\t00:01:30.00\t89\n" +
		"2\t00:00:31.00\t00:02:01.00\t30\n"
	if buf.String() != want {
		t.Fatalf("tsv = %q\nwant  %q", buf.String(), want)
	}
}

func TestSelect(t *testing.T) {
	rows := make([]Row, 8)
	for i := range rows {
		rows[i].Number = i + 1
	}

	got, err := Select(rows, " 7, 2-4 ,3")
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	var numbers []string
	for _, r := range got {
		numbers = append(numbers, string(rune('0'+r.Number)))
	}
	if strings.Join(numbers, ",") != "2,3,4,7" {
		t.Fatalf("unexpected selection %v", numbers)
	}

	if all, _ := Select(rows, ""); len(all) != 8 {
		t.Fatalf("empty selection should keep all rows, got %d", len(all))
	}

	for _, bad := range []string{"0", "9", "4-2", "x", "1-", "2,,3"} {
		if _, err := Select(rows, bad); !errors.Is(err, ErrBadSelection) {
			t.Fatalf("Select(%q) error = %v, want ErrBadSelection", bad, err)
		}
	}
}
