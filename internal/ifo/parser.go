package ifo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"discchapters/internal/binutil"
)

const (
	sectorSize = 2048

	minFileSize = 0x0200

	// Header offsets.
	offPGCITSector = 0x00CC

	// Offsets relative to the program chain start.
	offProgramCount = 0x0002
	offCellCount    = 0x0003
	offPlaybackTime = 0x0004
	offSubTables    = 0x00E4
	offProgramMap   = 0x00E6

	cellPlaybackStride = 0x18

	maxPrograms = 99
	maxCells    = 255
)

// searchPointerSizes lists the record sizes tried, in order, when resolving the
// first PGCI_SRP entry.
var searchPointerSizes = []int{8, 12}

// Result holds the durations extracted from one program chain.
type Result struct {
	Programs []time.Duration
	Cells    []time.Duration
	// ChainDuration is the playback time recorded in the program chain header.
	ChainDuration time.Duration
	// ChainCount is the number of program chains declared in VTS_PGCIT.
	ChainCount int
	// SearchPointerSize is the record size (8 or 12) that located the chain.
	SearchPointerSize int
}

// Total returns the sum of all program durations.
func (r *Result) Total() time.Duration {
	var sum time.Duration
	for _, d := range r.Programs {
		sum += d
	}
	return sum
}

// ParseFile opens path and parses it as a VTS IFO.
func ParseFile(path string) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ifo: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat ifo: %w", err)
	}
	return Parse(file, info.Size())
}

// Parse reads size bytes from r and parses them as a VTS IFO.
func Parse(r io.ReaderAt, size int64) (*Result, error) {
	if size < minFileSize {
		return nil, ErrTooShort
	}
	data := make([]byte, size)
	n, err := r.ReadAt(data, 0)
	if err != nil && !(errors.Is(err, io.EOF) && int64(n) == size) {
		return nil, fmt.Errorf("read ifo: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses an in-memory VTS IFO.
func ParseBytes(data []byte) (*Result, error) {
	if len(data) < minFileSize {
		return nil, ErrTooShort
	}
	r := binutil.NewReader(data)

	if err := r.Seek(offPGCITSector); err != nil {
		return nil, fmt.Errorf("seek pgcit pointer: %w", err)
	}
	sector, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("read pgcit pointer: %w", err)
	}
	tableBase := int64(sector) * sectorSize
	if tableBase <= 0 || tableBase >= int64(len(data)) {
		return nil, fmt.Errorf("%w: sector %d", ErrBadPointer, sector)
	}

	base := int(tableBase)
	if err := r.Seek(base); err != nil {
		return nil, fmt.Errorf("seek pgcit: %w", err)
	}
	chains, err := r.U16()
	if err != nil {
		return nil, fmt.Errorf("read pgcit header: %w", err)
	}
	if err := r.Skip(2 + 4); err != nil { // reserved, last byte address
		return nil, fmt.Errorf("read pgcit header: %w", err)
	}
	if chains == 0 {
		return nil, ErrNoProgramChains
	}

	srpBase := r.Pos()
	var (
		rel     uint32
		srpSize int
		found   bool
	)
	for _, size := range searchPointerSizes {
		if rel, found = resolveSearchPointer(data, base, srpBase, size); found {
			srpSize = size
			break
		}
	}
	if !found {
		return nil, ErrBadSearchPointer
	}

	pgc := int64(base) + int64(rel)
	if pgc <= 0 || pgc >= int64(len(data)) {
		return nil, fmt.Errorf("%w: program chain at %d", ErrBadPointer, pgc)
	}
	chain, err := readChain(r, int(pgc))
	if err != nil {
		return nil, err
	}

	programs, err := aggregatePrograms(chain.programMap, chain.cells)
	if err != nil {
		return nil, err
	}

	return &Result{
		Programs:          programs,
		Cells:             chain.cells,
		ChainDuration:     chain.playback.Duration(),
		ChainCount:        int(chains),
		SearchPointerSize: srpSize,
	}, nil
}

// resolveSearchPointer interprets the first search pointer record as size bytes
// long and returns the program chain offset (relative to tableBase) held in its
// last four bytes, provided the chain it points to looks sane.
func resolveSearchPointer(data []byte, tableBase, srpBase, size int) (uint32, bool) {
	if srpBase+size > len(data) {
		return 0, false
	}
	candidate, ok := binutil.U32At(data, srpBase+size-4)
	if !ok {
		return 0, false
	}

	pgc := int64(tableBase) + int64(candidate)
	if pgc+offProgramMap+2+2 > int64(len(data)) {
		return 0, false
	}
	at := int(pgc)

	programs, _ := binutil.U8At(data, at+offProgramCount)
	cells, _ := binutil.U8At(data, at+offCellCount)
	if programs == 0 || programs > maxPrograms || cells == 0 || int(cells) > maxCells {
		return 0, false
	}

	mapOff, ok := binutil.U16At(data, at+offProgramMap)
	if !ok {
		return 0, false
	}
	if pgc+int64(mapOff)+int64(programs) > int64(len(data)) {
		return 0, false
	}
	return candidate, true
}

type programChain struct {
	playback   Timecode
	programMap []int
	cells      []time.Duration

	commandOffset      uint16
	programMapOffset   uint16
	cellPlaybackOffset uint16
	cellPositionOffset uint16
}

func readChain(r *binutil.Reader, pgc int) (*programChain, error) {
	if err := r.Seek(pgc + offProgramCount); err != nil {
		return nil, fmt.Errorf("seek program chain: %w", err)
	}
	programs, err := r.U8()
	if err != nil {
		return nil, fmt.Errorf("read program count: %w", err)
	}
	cells, err := r.U8()
	if err != nil {
		return nil, fmt.Errorf("read cell count: %w", err)
	}
	raw, err := r.Bytes(4)
	if err != nil {
		return nil, fmt.Errorf("read chain playback time: %w", err)
	}
	playback, err := DecodeTimecode(raw)
	if err != nil {
		return nil, err
	}

	chain := &programChain{playback: playback}
	if err := r.Seek(pgc + offSubTables); err != nil {
		return nil, fmt.Errorf("seek sub-table offsets: %w", ErrTruncated)
	}
	for _, dst := range []*uint16{&chain.commandOffset, &chain.programMapOffset, &chain.cellPlaybackOffset, &chain.cellPositionOffset} {
		if *dst, err = r.U16(); err != nil {
			return nil, fmt.Errorf("read sub-table offsets: %w", err)
		}
	}

	if programs == 0 || cells == 0 {
		return nil, fmt.Errorf("%w: programs=%d cells=%d", ErrBadCounts, programs, cells)
	}

	if err := r.Seek(pgc + int(chain.programMapOffset)); err != nil {
		return nil, fmt.Errorf("seek program map: %w", ErrTruncated)
	}
	chain.programMap = make([]int, programs)
	for i := range chain.programMap {
		v, err := r.U8()
		if err != nil {
			return nil, fmt.Errorf("read program map entry %d: %w", i+1, err)
		}
		chain.programMap[i] = int(v)
	}

	if err := r.Seek(pgc + int(chain.cellPlaybackOffset)); err != nil {
		return nil, fmt.Errorf("seek cell playback table: %w", ErrTruncated)
	}
	chain.cells = make([]time.Duration, cells)
	for i := range chain.cells {
		if err := r.Skip(4); err != nil { // category and flags
			return nil, fmt.Errorf("read cell %d: %w", i+1, err)
		}
		raw, err := r.Bytes(4)
		if err != nil {
			return nil, fmt.Errorf("read cell %d: %w", i+1, err)
		}
		tc, err := DecodeTimecode(raw)
		if err != nil {
			return nil, err
		}
		chain.cells[i] = tc.Duration()
		// The trailing sector addresses of the final record may be cut off;
		// only the next record's read decides whether the table is truncated.
		if err := r.Skip(cellPlaybackStride - 8); err != nil {
			_ = r.Seek(r.Len())
		}
	}
	return chain, nil
}

// aggregatePrograms sums the cells owned by each program. Program p owns cells
// programMap[p] through programMap[p+1]-1; the last program runs to the final cell.
func aggregatePrograms(programMap []int, cells []time.Duration) ([]time.Duration, error) {
	out := make([]time.Duration, len(programMap))
	cellCount := len(cells)
	for p, start := range programMap {
		end := cellCount
		if p < len(programMap)-1 {
			end = programMap[p+1] - 1
		}
		if start < 1 || start > cellCount || end < start || end > cellCount {
			return nil, fmt.Errorf("%w: program %d cells %d-%d of %d", ErrBadMapping, p+1, start, end, cellCount)
		}
		var sum time.Duration
		for c := start; c <= end; c++ {
			sum += cells[c-1]
		}
		out[p] = sum
	}
	return out, nil
}
