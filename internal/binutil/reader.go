package binutil

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrShortRead reports a fixed-size read that ran past the end of the buffer.
var ErrShortRead = fmt.Errorf("short read: %w", io.ErrUnexpectedEOF)

// ErrSeek reports a cursor move outside the buffer.
var ErrSeek = errors.New("seek outside buffer")

// Reader is a bounds-checked big-endian cursor over a byte slice.
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a Reader positioned at offset 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the size of the underlying buffer.
func (r *Reader) Len() int { return len(r.data) }

// Pos returns the current cursor offset.
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of bytes between the cursor and the end.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

// Seek moves the cursor to an absolute offset. Seeking to len(data) is allowed.
func (r *Reader) Seek(offset int) error {
	if offset < 0 || offset > len(r.data) {
		return fmt.Errorf("%w: offset %d size %d", ErrSeek, offset, len(r.data))
	}
	r.pos = offset
	return nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || r.pos+n > len(r.data) {
		return ErrShortRead
	}
	r.pos += n
	return nil
}

// Bytes returns the next n bytes without copying.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, ErrShortRead
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// U8 reads one byte.
func (r *Reader) U8() (uint8, error) {
	if r.pos+1 > len(r.data) {
		return 0, ErrShortRead
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

// U16 reads a big-endian uint16.
func (r *Reader) U16() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// U32 reads a big-endian uint32.
func (r *Reader) U32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// U16At reads a big-endian uint16 at an absolute offset without moving the cursor.
func U16At(data []byte, offset int) (uint16, bool) {
	if offset < 0 || offset+2 > len(data) {
		return 0, false
	}
	return binary.BigEndian.Uint16(data[offset : offset+2]), true
}

// U32At reads a big-endian uint32 at an absolute offset without moving the cursor.
func U32At(data []byte, offset int) (uint32, bool) {
	if offset < 0 || offset+4 > len(data) {
		return 0, false
	}
	return binary.BigEndian.Uint32(data[offset : offset+4]), true
}

// U8At reads the byte at offset.
func U8At(data []byte, offset int) (uint8, bool) {
	if offset < 0 || offset >= len(data) {
		return 0, false
	}
	return data[offset], true
}
