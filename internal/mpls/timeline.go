package mpls

import "time"

// minLastChapterTicks is the shortest length reported for the final chapter.
const minLastChapterTicks = TicksPerSecond

// Chapter is one derived chapter.
type Chapter struct {
	Start       time.Duration
	Length      time.Duration
	StartTicks  int64
	LengthTicks int64
	// Seconds is the length rounded half away from zero, after the lead-in,
	// lead-out and trailing segment corrections.
	Seconds int
}

// resolveItem maps an authored play item reference onto items, accepting both
// 0-based and 1-based numbering. It returns -1 when neither fits.
func resolveItem(ref uint16, items int) int {
	idx := int(ref)
	if idx < items {
		return idx
	}
	if idx > 0 && idx-1 < items {
		return idx - 1
	}
	return -1
}

// itemOffsets returns the starting tick of each play item on the flattened
// playlist timeline.
func itemOffsets(items []PlayItem) []int64 {
	offsets := make([]int64, len(items))
	var acc int64
	for i, it := range items {
		offsets[i] = acc
		acc += it.Ticks()
	}
	return offsets
}

// chapterStarts converts marks to absolute ticks, drops a single trailing
// dummy mark and enforces strictly increasing starts. The returned marks slice
// is aligned with the returned starts.
func chapterStarts(pl *Playlist) ([]int64, []Mark) {
	marks := append([]Mark(nil), pl.Marks...)
	offsets := itemOffsets(pl.Items)
	starts := make([]int64, 0, len(marks))

	for _, m := range marks {
		var abs int64
		idx := resolveItem(m.PlayItemRef, len(pl.Items))
		switch {
		case len(pl.Items) == 1:
			abs = int64(m.Timestamp)
		case idx >= 0:
			local := int64(m.Timestamp) - int64(pl.Items[idx].In)
			if local < 0 {
				local = 0
			}
			abs = offsets[idx] + local
		default:
			abs = pl.TotalTicks
		}
		if abs < 0 {
			abs = 0
		}
		starts = append(starts, abs)
	}

	if n := len(starts); n >= 2 && starts[n-1] >= pl.TotalTicks && starts[n-2] < pl.TotalTicks {
		starts = starts[:n-1]
		marks = marks[:n-1]
	}

	for i := 1; i < len(starts); i++ {
		if starts[i] <= starts[i-1] {
			starts[i] = starts[i-1] + 1
		}
	}
	return starts, marks
}

// chapterLengths derives each chapter's tick length. The last chapter prefers
// its authored duration, then the remainder of its play item plus every later
// item, then the rest of the playlist, and is never shorter than one second.
func chapterLengths(pl *Playlist, starts []int64, marks []Mark) []int64 {
	lengths := make([]int64, len(starts))
	for i := 0; i < len(starts)-1; i++ {
		lengths[i] = max(starts[i+1]-starts[i], 0)
	}
	if len(starts) == 0 {
		return lengths
	}

	lastIdx := len(starts) - 1
	last := marks[lastIdx]
	var length int64
	if last.Duration > 0 {
		length = int64(last.Duration)
	} else {
		length = remainingTicks(pl.Items, last)
		if length <= 0 {
			if byTotal := pl.TotalTicks - starts[lastIdx]; byTotal > 0 {
				length = byTotal
			}
		}
	}
	lengths[lastIdx] = max(length, minLastChapterTicks)
	return lengths
}

// remainingTicks sums what is left of the mark's own play item after the mark
// plus the full length of every following item.
func remainingTicks(items []PlayItem, m Mark) int64 {
	idx := resolveItem(m.PlayItemRef, len(items))
	if idx < 0 {
		return 0
	}
	var tail int64
	cur := items[idx]
	if cur.Out > cur.In {
		from := max(int64(cur.In), int64(m.Timestamp))
		if int64(cur.Out) > from {
			tail += int64(cur.Out) - from
		}
	}
	for _, it := range items[idx+1:] {
		tail += it.Ticks()
	}
	return tail
}
