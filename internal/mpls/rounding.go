package mpls

import "discchapters/internal/binutil"

// patternMinIndex is the first chapter index (0-based) eligible for the
// trailing segment correction.
const patternMinIndex = 4

// trailingPatterns lists rounded-second sequences whose final segment is
// authored one second longer than it plays: an ending followed by a preview,
// sometimes followed by a short corner. Checked in order; the first match wins.
var trailingPatterns = [][]int{
	{90, 31},
	{90, 30, 61},
	{90, 30, 31},
	{90, 20, 16},
	{100, 21},
	{90, 21},
	{90, 20, 11},
}

// TrailingPatterns returns a copy of the built-in correction patterns.
func TrailingPatterns() [][]int {
	out := make([][]int, len(trailingPatterns))
	for i, p := range trailingPatterns {
		out[i] = append([]int(nil), p...)
	}
	return out
}

// roundSeconds converts a tick length to whole seconds, half away from zero.
func roundSeconds(ticks int64) int {
	return int(binutil.RoundHalfAway(ticks, TicksPerSecond))
}

// endsWithPattern reports whether history[..index) followed by current ends
// with pattern. The pattern's last element is compared against current, the
// rest against committed values.
func endsWithPattern(history []int, index int, pattern []int, current int) bool {
	k := len(pattern)
	if k == 0 {
		return false
	}
	start := index - (k - 1)
	if start < 0 || start+k-1 > len(history) {
		return false
	}
	if pattern[k-1] != current {
		return false
	}
	for j := 0; j < k-1; j++ {
		if history[start+j] != pattern[j] {
			return false
		}
	}
	return true
}

// trimOneSecond reports whether chapter index of count should lose a second.
// The first and last chapters always do (black lead-in and lead-out); from the
// fifth chapter on, so does the tail of any matching pattern.
func trimOneSecond(index, current int, history []int, count int, patterns [][]int) bool {
	if index == 0 || index == count-1 {
		return true
	}
	if index < patternMinIndex {
		return false
	}
	for _, p := range patterns {
		if endsWithPattern(history, index, p, current) {
			return true
		}
	}
	return false
}

// buildChapters assembles chapters from starts and lengths, committing the
// corrected seconds one chapter at a time so later pattern checks see them.
func buildChapters(starts, lengths []int64, patterns [][]int) []Chapter {
	chapters := make([]Chapter, 0, len(starts))
	history := make([]int, 0, len(starts))
	for i := range starts {
		secs := roundSeconds(lengths[i])
		if trimOneSecond(i, secs, history, len(starts), patterns) {
			secs = max(secs-1, 0)
		}
		history = append(history, secs)
		chapters = append(chapters, Chapter{
			Start:       TicksToDuration(starts[i]),
			Length:      TicksToDuration(lengths[i]),
			StartTicks:  starts[i],
			LengthTicks: lengths[i],
			Seconds:     secs,
		})
	}
	return chapters
}
