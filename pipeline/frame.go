package pipeline

import (
	"encoding/binary"
	"time"
)

// Frame is one fixed-size block of mono 16-bit PCM captured from the device,
// tagged with its amplitude summary. Immutable once produced.
type Frame struct {
	PCM        []byte
	Amplitude  float64 // mean absolute sample magnitude
	CapturedAt time.Time
}

// Burst is an ordered run of kept frames drained from the buffer in one cycle.
type Burst []Frame

// PCM concatenates the burst's samples into one contiguous buffer.
func (b Burst) PCM() []byte {
	var n int
	for _, f := range b {
		n += len(f.PCM)
	}
	out := make([]byte, 0, n)
	for _, f := range b {
		out = append(out, f.PCM...)
	}
	return out
}

// GateFunc decides whether a captured frame carries enough speech energy
// to keep. It runs inside the capture callback and must be O(frame size).
type GateFunc func(Frame) bool

// AmplitudeGate keeps frames whose mean absolute amplitude exceeds the
// threshold. A crude stand-in for real voice activity detection; swap in a
// stronger gate without touching the pipeline.
func AmplitudeGate(threshold float64) GateFunc {
	return func(f Frame) bool { return f.Amplitude > threshold }
}

// MeanAmplitude computes the mean absolute sample magnitude of
// little-endian PCM16 data.
func MeanAmplitude(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i+1 < len(pcm); i += 2 {
		s := int16(binary.LittleEndian.Uint16(pcm[i:]))
		v := int32(s)
		if v < 0 {
			v = -v
		}
		sum += float64(v)
	}
	return sum / float64(n)
}

// NewFrame builds a frame from raw capture data, copying the PCM out of the
// device-owned buffer.
func NewFrame(data []byte, now time.Time) Frame {
	pcm := make([]byte, len(data))
	copy(pcm, data)
	return Frame{PCM: pcm, Amplitude: MeanAmplitude(pcm), CapturedAt: now}
}
