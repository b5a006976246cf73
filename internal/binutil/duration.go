package binutil

import "time"

// MinUsableEntries is the smallest chapter/mark table treated as meaningful.
const MinUsableEntries = 2

// Degenerate reports whether a table with count usable entries carries no real
// chapter structure (zero or one boundary).
func Degenerate(count int) bool {
	return count < MinUsableEntries
}

// WithinTolerance reports whether candidate is close enough to reference. The
// allowed drift is the larger of minDrift and ratio*reference.
func WithinTolerance(reference, candidate, minDrift time.Duration, ratio float64) bool {
	allowed := time.Duration(float64(reference) * ratio)
	if allowed < minDrift {
		allowed = minDrift
	}
	diff := candidate - reference
	if diff < 0 {
		diff = -diff
	}
	return diff <= allowed
}

// RoundHalfAway divides num by den and rounds the quotient half away from zero.
// den must be positive.
func RoundHalfAway(num, den int64) int64 {
	if num >= 0 {
		return (num + den/2) / den
	}
	return -((-num + den/2) / den)
}
