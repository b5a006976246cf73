package ifo

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"discchapters/internal/binutil"
)

const (
	fixtureTable      = sectorSize
	fixtureChainRel   = 0x20
	fixtureMapOffset  = 0x00F0
	fixtureCellOffset = 0x0100
)

type fixture struct {
	chains     uint16
	srpSize    int
	programMap []byte
	cells      [][4]byte
	size       int
}

func defaultFixture() fixture {
	return fixture{
		chains:     1,
		srpSize:    8,
		programMap: []byte{1, 3, 5},
		cells: [][4]byte{
			{0x00, 0x01, 0x30, 0x40}, // 00:01:30 @25
			{0x00, 0x00, 0x10, 0x50}, // 00:00:10 + 10 frames @25
			{0x00, 0x10, 0x00, 0x40},
			{0x00, 0x00, 0x45, 0x40},
			{0x00, 0x01, 0x31, 0x40},
		},
		size: 4096,
	}
}

func (f fixture) build(t *testing.T) []byte {
	t.Helper()
	data := make([]byte, f.size)
	binary.BigEndian.PutUint32(data[offPGCITSector:], fixtureTable/sectorSize)
	binary.BigEndian.PutUint16(data[fixtureTable:], f.chains)

	srp := fixtureTable + 8
	switch f.srpSize {
	case 8:
		binary.BigEndian.PutUint32(data[srp+4:], fixtureChainRel)
	case 12:
		// An 8-byte read of this record lands on the zero category word.
		binary.BigEndian.PutUint32(data[srp+8:], fixtureChainRel)
	}

	pgc := fixtureTable + fixtureChainRel
	data[pgc+offProgramCount] = byte(len(f.programMap))
	data[pgc+offCellCount] = byte(len(f.cells))
	copy(data[pgc+offPlaybackTime:], []byte{0x00, 0x15, 0x37, 0x40})
	binary.BigEndian.PutUint16(data[pgc+offProgramMap:], fixtureMapOffset)
	binary.BigEndian.PutUint16(data[pgc+offProgramMap+2:], fixtureCellOffset)
	copy(data[pgc+fixtureMapOffset:], f.programMap)
	for i, cell := range f.cells {
		at := pgc + fixtureCellOffset + i*cellPlaybackStride
		if at+8 > len(data) {
			break
		}
		copy(data[at+4:at+8], cell[:])
	}
	return data
}

func sum(values []time.Duration) time.Duration {
	var total time.Duration
	for _, v := range values {
		total += v
	}
	return total
}

func TestParseBytesAggregatesPrograms(t *testing.T) {
	res, err := ParseBytes(defaultFixture().build(t))
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}

	wantCells := []time.Duration{
		90 * time.Second,
		10*time.Second + 400*time.Millisecond,
		10 * time.Minute,
		45 * time.Second,
		91 * time.Second,
	}
	if !reflect.DeepEqual(res.Cells, wantCells) {
		t.Fatalf("cells = %v, want %v", res.Cells, wantCells)
	}
	wantPrograms := []time.Duration{
		wantCells[0] + wantCells[1],
		wantCells[2] + wantCells[3],
		wantCells[4],
	}
	if !reflect.DeepEqual(res.Programs, wantPrograms) {
		t.Fatalf("programs = %v, want %v", res.Programs, wantPrograms)
	}
	if sum(res.Programs) != sum(res.Cells) {
		t.Fatalf("program total %v != cell total %v", sum(res.Programs), sum(res.Cells))
	}
	if res.Total() != sum(res.Cells) {
		t.Fatalf("Total = %v", res.Total())
	}
	if res.SearchPointerSize != 8 {
		t.Fatalf("search pointer size = %d, want 8", res.SearchPointerSize)
	}
	if res.ChainCount != 1 {
		t.Fatalf("chain count = %d", res.ChainCount)
	}
	if res.ChainDuration != 15*time.Minute+37*time.Second {
		t.Fatalf("chain duration = %v", res.ChainDuration)
	}
}

func TestParseBytesFallsBackToTwelveByteSearchPointer(t *testing.T) {
	f := defaultFixture()
	f.srpSize = 12
	data := f.build(t)

	if _, ok := resolveSearchPointer(data, fixtureTable, fixtureTable+8, 8); ok {
		t.Fatal("8-byte interpretation should fail validation")
	}
	rel, ok := resolveSearchPointer(data, fixtureTable, fixtureTable+8, 12)
	if !ok || rel != fixtureChainRel {
		t.Fatalf("12-byte interpretation = %#x, %v", rel, ok)
	}

	res, err := ParseBytes(data)
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if res.SearchPointerSize != 12 {
		t.Fatalf("search pointer size = %d, want 12", res.SearchPointerSize)
	}
	if len(res.Programs) != 3 || len(res.Cells) != 5 {
		t.Fatalf("unexpected shape: %d programs %d cells", len(res.Programs), len(res.Cells))
	}
}

func TestParseBytesErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(f *fixture, data []byte) []byte
		want   error
	}{
		{
			name:   "too short",
			mutate: func(_ *fixture, data []byte) []byte { return data[:minFileSize-1] },
			want:   ErrTooShort,
		},
		{
			name: "pointer past end",
			mutate: func(_ *fixture, data []byte) []byte {
				binary.BigEndian.PutUint32(data[offPGCITSector:], 2)
				return data
			},
			want: ErrBadPointer,
		},
		{
			name: "zero pointer",
			mutate: func(_ *fixture, data []byte) []byte {
				binary.BigEndian.PutUint32(data[offPGCITSector:], 0)
				return data
			},
			want: ErrBadPointer,
		},
		{
			name: "no chains",
			mutate: func(_ *fixture, data []byte) []byte {
				binary.BigEndian.PutUint16(data[fixtureTable:], 0)
				return data
			},
			want: ErrNoProgramChains,
		},
		{
			name: "no valid search pointer",
			mutate: func(_ *fixture, data []byte) []byte {
				binary.BigEndian.PutUint32(data[fixtureTable+12:], 0x00FF0000)
				return data
			},
			want: ErrBadSearchPointer,
		},
		{
			name: "program starts past last cell",
			mutate: func(_ *fixture, data []byte) []byte {
				data[fixtureTable+fixtureChainRel+fixtureMapOffset+2] = 6
				return data
			},
			want: ErrBadMapping,
		},
		{
			name: "program map goes backwards",
			mutate: func(_ *fixture, data []byte) []byte {
				data[fixtureTable+fixtureChainRel+fixtureMapOffset+1] = 1
				return data
			},
			want: ErrBadMapping,
		},
		{
			name: "cell table truncated",
			mutate: func(_ *fixture, data []byte) []byte {
				return data[:fixtureTable+fixtureChainRel+fixtureCellOffset+2*cellPlaybackStride]
			},
			want: ErrTruncated,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := defaultFixture()
			data := tc.mutate(&f, f.build(t))
			res, err := ParseBytes(data)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if res != nil {
				t.Fatalf("expected no partial result, got %+v", res)
			}
		})
	}
}

func TestTruncatedErrorWrapsUnexpectedEOF(t *testing.T) {
	f := defaultFixture()
	data := f.build(t)[:fixtureTable+fixtureChainRel+fixtureCellOffset+cellPlaybackStride+4]
	_, err := ParseBytes(data)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF in chain, got %v", err)
	}
}

func TestReadChainRejectsZeroCounts(t *testing.T) {
	f := defaultFixture()
	f.cells = nil
	data := f.build(t)

	if _, err := ParseBytes(data); !errors.Is(err, ErrBadSearchPointer) {
		t.Fatalf("search pointer validation should reject an empty chain first, got %v", err)
	}
	_, err := readChain(binutil.NewReader(data), fixtureTable+fixtureChainRel)
	if !errors.Is(err, ErrBadCounts) {
		t.Fatalf("readChain err = %v, want ErrBadCounts", err)
	}
}

func TestDecodeTimecode(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
		want time.Duration
		fps  int
	}{
		{"25fps", []byte{0x01, 0x02, 0x03, 0x50}, time.Hour + 2*time.Minute + 3*time.Second + 400*time.Millisecond, 25},
		{"30fps", []byte{0x00, 0x00, 0x01, 0xD5}, time.Second + 500*time.Millisecond, 30},
		{"unknown rate defaults to 30", []byte{0x00, 0x00, 0x00, 0x15}, 500 * time.Millisecond, 30},
		{"bcd tens", []byte{0x23, 0x59, 0x59, 0x40}, 23*time.Hour + 59*time.Minute + 59*time.Second, 25},
	}
	for _, tc := range cases {
		tcode, err := DecodeTimecode(tc.raw)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if tcode.FPS != tc.fps {
			t.Errorf("%s: fps = %d, want %d", tc.name, tcode.FPS, tc.fps)
		}
		if got := tcode.Duration(); got != tc.want {
			t.Errorf("%s: duration = %v, want %v", tc.name, got, tc.want)
		}
	}

	if _, err := DecodeTimecode([]byte{0x01}); !errors.Is(err, ErrTruncated) {
		t.Fatalf("short timecode err = %v", err)
	}

	tc, _ := DecodeTimecode([]byte{0x01, 0x02, 0x03, 0x50})
	want := time.Duration((1*3600 + 2*60 + 3 + 10.0/25.0) * float64(time.Second))
	if tc.Duration() != want {
		t.Fatalf("duration = %v, want %v", tc.Duration(), want)
	}
}

func TestParseFileIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "VTS_01_0.IFO")
	if err := os.WriteFile(path, defaultFixture().build(t), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	first, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	second, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile second: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ between runs:\n%+v\n%+v", first, second)
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.IFO")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file err = %v", err)
	}
}
