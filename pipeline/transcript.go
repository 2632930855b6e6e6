package pipeline

import (
	"sync"
	"time"
)

// Segment is one immutable, positioned entry of the transcript log.
type Segment struct {
	Position        int
	Text            string
	Truncated       bool
	CaptureStart    time.Time
	CaptureEnd      time.Time
	ProcessingDelay time.Duration
}

// TranscriptLog is the append-only ordered sequence of completed segments.
// Exactly one writer (the segmentation loop) appends; any number of
// consumers read through private cursors. Positions are assigned at append
// time, strictly increasing, never reused. Growth is unbounded; trimming is
// a future retention concern.
type TranscriptLog struct {
	mu       sync.RWMutex
	segments []Segment
}

func NewTranscriptLog() *TranscriptLog {
	return &TranscriptLog{}
}

// Append assigns the next position and stores the segment. Returns the
// assigned position.
func (l *TranscriptLog) Append(s Segment) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.Position = len(l.segments)
	l.segments = append(l.segments, s)
	return s.Position
}

// Len reports the number of appended segments.
func (l *TranscriptLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.segments)
}

// ReadFrom returns a copy of every segment at position >= pos, in order.
func (l *TranscriptLog) ReadFrom(pos int) []Segment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if pos < 0 {
		pos = 0
	}
	if pos >= len(l.segments) {
		return nil
	}
	out := make([]Segment, len(l.segments)-pos)
	copy(out, l.segments[pos:])
	return out
}

// Cursor is a consumer's private next-position pointer into the log. It
// only ever advances; a single consumer never reads the same position
// twice. Not safe for sharing between consumers.
type Cursor struct {
	next int
}

// Next returns every unread segment in order and advances past them.
func (c *Cursor) Next(l *TranscriptLog) []Segment {
	segs := l.ReadFrom(c.next)
	if len(segs) > 0 {
		c.next = segs[len(segs)-1].Position + 1
	}
	return segs
}

// Position reports the next position the cursor will read.
func (c *Cursor) Position() int {
	return c.next
}
