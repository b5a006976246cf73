package mpls

import (
	"encoding/binary"
	"testing/fstest"
)

type fixtureItem struct {
	in, out uint32
}

type fixtureMark struct {
	typ byte
	ref uint16
	ts  uint32
	dur uint32
}

func secs(s float64) uint32 {
	return uint32(s * TicksPerSecond)
}

func entry(ref uint16, ts uint32) fixtureMark {
	return fixtureMark{typ: byte(MarkEntry), ref: ref, ts: ts}
}

// buildPlaylist lays out a minimal MPLS file: header, section pointers,
// PlayList and PlayListMark.
func buildPlaylist(items []fixtureItem, marks []fixtureMark) []byte {
	be := binary.BigEndian

	var list []byte
	list = be.AppendUint16(list, 0) // reserved
	list = be.AppendUint16(list, uint16(len(items)))
	list = be.AppendUint16(list, 0) // sub paths
	for i, it := range items {
		rec := make([]byte, 2+playItemFixed)
		be.PutUint16(rec[0:], playItemFixed)
		copy(rec[2:], []byte{'0', '0', '0', '0', byte('0' + i%10), 'M', '2', 'T', 'S'})
		be.PutUint32(rec[2+12:], it.in)
		be.PutUint32(rec[2+16:], it.out)
		list = append(list, rec...)
	}

	var markSec []byte
	markSec = be.AppendUint16(markSec, uint16(len(marks)))
	for _, m := range marks {
		rec := make([]byte, markRecordSize)
		rec[1] = m.typ
		be.PutUint16(rec[2:], m.ref)
		be.PutUint32(rec[4:], m.ts)
		be.PutUint16(rec[8:], 0xFFFF)
		be.PutUint32(rec[10:], m.dur)
		markSec = append(markSec, rec...)
	}

	const listStart = 20
	markStart := listStart + 4 + len(list)

	out := []byte("MPLS0200")
	out = be.AppendUint32(out, listStart)
	out = be.AppendUint32(out, uint32(markStart))
	out = be.AppendUint32(out, 0) // extension data
	out = be.AppendUint32(out, uint32(len(list)))
	out = append(out, list...)
	out = be.AppendUint32(out, uint32(len(markSec)))
	out = append(out, markSec...)
	return out
}

// evenPlaylist builds a single-item playlist of total seconds with n entry
// marks spread evenly from zero.
func evenPlaylist(total float64, n int) []byte {
	marks := make([]fixtureMark, 0, n)
	for i := 0; i < n; i++ {
		marks = append(marks, entry(0, secs(total*float64(i)/float64(n))))
	}
	return buildPlaylist([]fixtureItem{{in: 0, out: secs(total)}}, marks)
}

func mapFile(data []byte) *fstest.MapFile {
	return &fstest.MapFile{Data: data, Mode: 0o644}
}
