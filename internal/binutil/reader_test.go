package binutil

import (
	"errors"
	"io"
	"testing"
	"time"
)

func TestReaderBigEndian(t *testing.T) {
	r := NewReader([]byte{0x12, 0x34, 0xDE, 0xAD, 0xBE, 0xEF, 0x7F})

	v16, err := r.U16()
	if err != nil || v16 != 0x1234 {
		t.Fatalf("U16 = %#x, %v", v16, err)
	}
	v32, err := r.U32()
	if err != nil || v32 != 0xDEADBEEF {
		t.Fatalf("U32 = %#x, %v", v32, err)
	}
	v8, err := r.U8()
	if err != nil || v8 != 0x7F {
		t.Fatalf("U8 = %#x, %v", v8, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("remaining = %d, want 0", r.Remaining())
	}
}

func TestReaderShortRead(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03})
	if _, err := r.U32(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected unexpected EOF, got %v", err)
	}
	if r.Pos() != 0 {
		t.Fatalf("failed read moved cursor to %d", r.Pos())
	}
	if err := r.Skip(4); !errors.Is(err, ErrShortRead) {
		t.Fatalf("expected ErrShortRead from Skip, got %v", err)
	}
	if err := r.Seek(4); !errors.Is(err, ErrSeek) {
		t.Fatalf("expected ErrSeek, got %v", err)
	}
	if err := r.Seek(3); err != nil {
		t.Fatalf("seek to end: %v", err)
	}
}

func TestAtHelpers(t *testing.T) {
	data := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x02}
	if v, ok := U16At(data, 0); !ok || v != 1 {
		t.Fatalf("U16At = %d, %v", v, ok)
	}
	if v, ok := U32At(data, 2); !ok || v != 2 {
		t.Fatalf("U32At = %d, %v", v, ok)
	}
	if _, ok := U32At(data, 3); ok {
		t.Fatal("U32At past end should fail")
	}
	if _, ok := U8At(data, -1); ok {
		t.Fatal("U8At negative offset should fail")
	}
}

func TestWithinTolerance(t *testing.T) {
	ref := 24 * time.Minute
	cases := []struct {
		name string
		cand time.Duration
		want bool
	}{
		{"exact", ref, true},
		{"ratio bound", ref + 28*time.Second, true},
		{"beyond ratio", ref + 30*time.Second, false},
		{"below", ref - 20*time.Second, true},
	}
	for _, tc := range cases {
		if got := WithinTolerance(ref, tc.cand, 3*time.Second, 0.02); got != tc.want {
			t.Errorf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
	if !WithinTolerance(10*time.Second, 13*time.Second, 3*time.Second, 0.02) {
		t.Error("short reference should fall back to the minimum drift")
	}
	if WithinTolerance(10*time.Second, 14*time.Second, 3*time.Second, 0.02) {
		t.Error("4s drift on a 10s reference should be rejected")
	}
}

func TestRoundHalfAway(t *testing.T) {
	cases := []struct {
		num, den, want int64
	}{
		{67500, 45000, 2},
		{67499, 45000, 1},
		{22500, 45000, 1},
		{0, 45000, 0},
		{-22500, 45000, -1},
	}
	for _, tc := range cases {
		if got := RoundHalfAway(tc.num, tc.den); got != tc.want {
			t.Errorf("RoundHalfAway(%d, %d) = %d, want %d", tc.num, tc.den, got, tc.want)
		}
	}
	if !Degenerate(1) || Degenerate(2) {
		t.Error("Degenerate threshold should be two entries")
	}
}
