// Package disc locates chapter sources on a disc tree.
//
// It maps files to their format by extension, rejects the DVD menu IFO, probes
// a disc root for the usual main-title candidates and enumerates every
// playlist and title set for batch scans. Directory names are matched
// case-insensitively since disc images are often mounted or copied with
// folded names.
package disc
