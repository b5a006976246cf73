package mpls

import (
	"bytes"
	"time"

	"discchapters/internal/binutil"
)

// TicksPerSecond is the Blu-ray presentation clock rate.
const TicksPerSecond = 45000

const (
	headerSize     = 8
	markRecordSize = 14
	// Fixed fields of a play item after its length prefix: reserved(2),
	// clip name and codec id(9), flags(1), in(4), out(4).
	playItemFixed = 2 + 9 + 1 + 4 + 4
)

var magic = []byte("MPLS")

// MarkType classifies a PlayListMark entry.
type MarkType uint8

const (
	MarkEntry MarkType = 1
	MarkLink  MarkType = 2
)

// IsChapter reports whether the mark delimits a user-visible chapter.
func (t MarkType) IsChapter() bool {
	return t == MarkEntry || t == MarkLink
}

// PlayItem is one stream segment expressed as 45 kHz in/out ticks.
type PlayItem struct {
	In  uint32
	Out uint32
}

// Ticks returns the segment length, or zero when out does not follow in.
func (p PlayItem) Ticks() int64 {
	if p.Out > p.In {
		return int64(p.Out) - int64(p.In)
	}
	return 0
}

// Mark is a PlayListMark record. PlayItemRef is kept as authored; discs use
// both 0-based and 1-based references.
type Mark struct {
	Type        MarkType
	PlayItemRef uint16
	Timestamp   uint32
	Duration    uint32
}

// Playlist is the decoded subset of an MPLS file needed for chapter math.
type Playlist struct {
	Items []PlayItem
	// Marks holds only Entry and Link marks.
	Marks []Mark
	// MarkCount is the raw mark count declared by the file.
	MarkCount    int
	SubPathCount int
	TotalTicks   int64
}

// Duration returns the summed play item length.
func (p *Playlist) Duration() time.Duration {
	return TicksToDuration(p.TotalTicks)
}

// Summary is the cheap screening view used by the directory sweep.
type Summary struct {
	TotalTicks int64
	MarkCount  int
}

// Duration returns the summed play item length.
func (s Summary) Duration() time.Duration {
	return TicksToDuration(s.TotalTicks)
}

// TicksToDuration converts 45 kHz ticks to a duration without overflowing on
// long playlists.
func TicksToDuration(ticks int64) time.Duration {
	whole := ticks / TicksPerSecond
	rem := ticks % TicksPerSecond
	return time.Duration(whole)*time.Second + time.Duration(rem)*time.Second/TicksPerSecond
}

// Extract decodes the play items and chapter marks of an MPLS buffer. It
// reports false when the buffer is not a readable playlist.
func Extract(data []byte) (*Playlist, bool) {
	r, listStart, markStart, ok := openSections(data)
	if !ok {
		return nil, false
	}

	pl := &Playlist{}
	var err error
	if pl.Items, pl.SubPathCount, pl.TotalTicks, err = readPlayItems(r, listStart); err != nil {
		return nil, false
	}

	if err := r.Seek(markStart); err != nil {
		return nil, false
	}
	length, err := r.U32()
	if err != nil {
		return nil, false
	}
	count, err := r.U16()
	if err != nil {
		return nil, false
	}
	pl.MarkCount = int(count)

	end := int64(markStart) + 4 + int64(length)
	for i := 0; i < int(count); i++ {
		if int64(r.Pos())+markRecordSize > end {
			break
		}
		m, err := readMark(r)
		if err != nil {
			return nil, false
		}
		if m.Type.IsChapter() {
			pl.Marks = append(pl.Marks, m)
		}
	}
	return pl, true
}

// QuickRead returns only the total duration and raw mark count of an MPLS
// buffer, skipping mark decoding.
func QuickRead(data []byte) (Summary, bool) {
	r, listStart, markStart, ok := openSections(data)
	if !ok {
		return Summary{}, false
	}
	_, _, ticks, err := readPlayItems(r, listStart)
	if err != nil {
		return Summary{}, false
	}
	if err := r.Seek(markStart); err != nil {
		return Summary{}, false
	}
	if err := r.Skip(4); err != nil {
		return Summary{}, false
	}
	count, err := r.U16()
	if err != nil {
		return Summary{}, false
	}
	return Summary{TotalTicks: ticks, MarkCount: int(count)}, true
}

func openSections(data []byte) (*binutil.Reader, int, int, bool) {
	if len(data) < headerSize || !bytes.HasPrefix(data, magic) {
		return nil, 0, 0, false
	}
	r := binutil.NewReader(data)
	if err := r.Seek(headerSize); err != nil {
		return nil, 0, 0, false
	}
	listStart, err := r.U32()
	if err != nil {
		return nil, 0, 0, false
	}
	markStart, err := r.U32()
	if err != nil {
		return nil, 0, 0, false
	}
	if int64(listStart) > int64(len(data)) || int64(markStart) > int64(len(data)) {
		return nil, 0, 0, false
	}
	return r, int(listStart), int(markStart), true
}

func readPlayItems(r *binutil.Reader, start int) ([]PlayItem, int, int64, error) {
	if err := r.Seek(start); err != nil {
		return nil, 0, 0, err
	}
	length, err := r.U32()
	if err != nil {
		return nil, 0, 0, err
	}
	if err := r.Skip(2); err != nil {
		return nil, 0, 0, err
	}
	count, err := r.U16()
	if err != nil {
		return nil, 0, 0, err
	}
	subPaths, err := r.U16()
	if err != nil {
		return nil, 0, 0, err
	}

	bodyEnd := int64(start) + 4 + int64(length)
	fileEnd := int64(r.Len())
	items := make([]PlayItem, 0, count)
	var total int64
	for i := 0; i < int(count); i++ {
		if int64(r.Pos())+2 > bodyEnd {
			break
		}
		itemStart := r.Pos()
		itemLen, err := r.U16()
		if err != nil {
			return nil, 0, 0, err
		}
		itemEnd := int64(itemStart) + 2 + int64(itemLen)
		if itemEnd > bodyEnd || itemEnd > fileEnd {
			break
		}
		raw, err := r.Bytes(playItemFixed)
		if err != nil {
			return nil, 0, 0, err
		}
		item := PlayItem{
			In:  beU32(raw[12:16]),
			Out: beU32(raw[16:20]),
		}
		items = append(items, item)
		total += item.Ticks()
		if err := r.Seek(int(itemEnd)); err != nil {
			return nil, 0, 0, err
		}
	}
	return items, int(subPaths), total, nil
}

func readMark(r *binutil.Reader) (Mark, error) {
	raw, err := r.Bytes(markRecordSize)
	if err != nil {
		return Mark{}, err
	}
	return Mark{
		Type:        MarkType(raw[1]),
		PlayItemRef: uint16(raw[2])<<8 | uint16(raw[3]),
		Timestamp:   beU32(raw[4:8]),
		Duration:    beU32(raw[10:14]),
	}, nil
}

func beU32(b []byte) uint32 {
	v, _ := binutil.U32At(b, 0)
	return v
}
