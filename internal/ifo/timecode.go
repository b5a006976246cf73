package ifo

import (
	"fmt"
	"time"
)

// Timecode is a decoded DVD playback time (HH:MM:SS:FF).
type Timecode struct {
	Hours   int
	Minutes int
	Seconds int
	Frames  int
	FPS     int
}

// DecodeTimecode decodes the 4-byte BCD playback time used by PGC and cell
// playback records. The top two bits of the frame byte select the frame rate
// (01 = 25 fps, 11 = 30 fps); any other value is treated as 30 fps.
func DecodeTimecode(b []byte) (Timecode, error) {
	if len(b) < 4 {
		return Timecode{}, fmt.Errorf("decode timecode: %w", ErrTruncated)
	}
	fps := 30
	if (b[3]>>6)&0x03 == 0x01 {
		fps = 25
	}
	return Timecode{
		Hours:   bcd(b[0]),
		Minutes: bcd(b[1]),
		Seconds: bcd(b[2]),
		Frames:  bcd(b[3] & 0x3F),
		FPS:     fps,
	}, nil
}

// Duration converts the timecode to a linear duration. Frames are converted in
// integer nanoseconds.
func (t Timecode) Duration() time.Duration {
	whole := time.Duration(t.Hours*3600+t.Minutes*60+t.Seconds) * time.Second
	if t.FPS <= 0 {
		return whole
	}
	return whole + time.Duration(t.Frames)*time.Second/time.Duration(t.FPS)
}

func (t Timecode) String() string {
	return fmt.Sprintf("%02d:%02d:%02d:%02d@%d", t.Hours, t.Minutes, t.Seconds, t.Frames, t.FPS)
}

func bcd(v byte) int {
	return int(v>>4)*10 + int(v&0x0F)
}
