// Package mpls derives chapter lists from Blu-ray playlist files
// (BDMV/PLAYLIST/*.mpls).
//
// Extraction reads the PlayList and PlayListMark sections, maps Entry and Link
// marks onto a single tick timeline spanning every play item, and turns the
// mark deltas into chapter lengths rounded to whole seconds. Playlists whose
// mark table is degenerate (fewer than two usable marks) trigger a best-effort
// fallback: first the next numbered playlist in the same directory, then a
// sweep for the sibling with the most marks and a matching total duration.
//
// Unlike the DVD parser this package never fails: unreadable or malformed
// playlists produce an empty Result.
package mpls
