// Package resultcache persists chapter reports in SQLite so repeated scans of
// the same disc skip parsing.
//
// Entries are keyed by input path, a content digest and a settings
// fingerprint; any change to the file, its playlist directory or the parser
// options produces a miss. A file lock next to the database serializes schema
// creation and writes across processes.
package resultcache
