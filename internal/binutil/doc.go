// Package binutil holds the small big-endian readers and duration helpers shared
// by the DVD and Blu-ray parsers.
//
// Both disc formats store every multi-byte field big-endian and address tables
// through absolute or relative byte offsets. Reader wraps a byte buffer with a
// cursor and bounds checks so parsers can walk those tables without panicking
// on truncated input; every failed read surfaces ErrShortRead.
package binutil
