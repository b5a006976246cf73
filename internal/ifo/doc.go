// Package ifo reads program (chapter) and cell durations from DVD Video Title
// Set information files (VTS_xx_0.IFO).
//
// The parser follows the VTS_PGCIT sector pointer in the IFO header, resolves
// the first program chain through its search pointer, and sums the BCD cell
// playback times of each program. Structural problems are fatal: every failure
// is reported through one of the sentinel errors below and no partial result
// is returned.
package ifo
