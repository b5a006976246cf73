package ifo

import (
	"errors"

	"discchapters/internal/binutil"
)

var (
	// ErrTooShort reports a file smaller than the fixed IFO header.
	ErrTooShort = errors.New("ifo: file too short")
	// ErrBadPointer reports a VTS_PGCIT or program chain offset outside the file.
	ErrBadPointer = errors.New("ifo: program chain table pointer out of range")
	// ErrNoProgramChains reports an empty program chain table.
	ErrNoProgramChains = errors.New("ifo: no program chains")
	// ErrBadSearchPointer reports a search pointer table that validates with
	// neither the 8 nor the 12 byte record size.
	ErrBadSearchPointer = errors.New("ifo: unable to resolve program chain search pointer")
	// ErrBadCounts reports a program chain with zero programs or cells.
	ErrBadCounts = errors.New("ifo: invalid program or cell count")
	// ErrBadMapping reports a program whose start cell falls outside the cell table.
	ErrBadMapping = errors.New("ifo: invalid program to cell mapping")
	// ErrTruncated reports a fixed-size read past the end of the file.
	ErrTruncated = binutil.ErrShortRead
)
