package pipeline

import "sync"

// SegmentBuffer accumulates gated frames between drains. Single writer (the
// capture callback) and single reader (the segmentation loop); the mutex is
// held only for the append or the swap, never across I/O.
type SegmentBuffer struct {
	gate GateFunc
	cap  int

	mu     sync.Mutex
	frames []Frame
	kept   int // frames kept since the last TakeKept
}

// NewSegmentBuffer builds a buffer with the given gate and truncation cap.
// A cap <= 0 disables truncation.
func NewSegmentBuffer(gate GateFunc, capFrames int) *SegmentBuffer {
	return &SegmentBuffer{gate: gate, cap: capFrames}
}

// Push gates the frame and appends it when kept. Reports whether the frame
// passed the gate. Safe to call from the capture callback.
func (b *SegmentBuffer) Push(f Frame) bool {
	if !b.gate(f) {
		return false
	}
	b.mu.Lock()
	b.frames = append(b.frames, f)
	b.kept++
	b.mu.Unlock()
	return true
}

// Len reports the number of frames currently accumulated.
func (b *SegmentBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.frames)
}

// Drain swaps out everything accumulated and fully clears the buffer.
// When the accumulated count exceeds the cap, only the first cap frames are
// returned and the remainder is discarded; truncated reports that case.
// Discarding overflow instead of carrying it forward bounds per-cycle
// latency under sustained overload.
func (b *SegmentBuffer) Drain() (burst Burst, truncated bool) {
	b.mu.Lock()
	frames := b.frames
	b.frames = nil
	b.mu.Unlock()

	if b.cap > 0 && len(frames) > b.cap {
		return Burst(frames[:b.cap]), true
	}
	return Burst(frames), false
}

// TakeKept returns the number of frames kept since the previous call.
// Feeds the silence monitor.
func (b *SegmentBuffer) TakeKept() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.kept
	b.kept = 0
	return n
}
