package pipeline

import (
	"fmt"
	"testing"
)

func TestAppendAssignsStrictlyIncreasingPositions(t *testing.T) {
	tlog := NewTranscriptLog()
	for i := 0; i < 5; i++ {
		pos := tlog.Append(Segment{Text: fmt.Sprintf("seg %d", i)})
		if pos != i {
			t.Errorf("append %d assigned position %d", i, pos)
		}
	}
	if tlog.Len() != 5 {
		t.Errorf("Len = %d, want 5", tlog.Len())
	}

	segs := tlog.ReadFrom(0)
	for i, s := range segs {
		if s.Position != i {
			t.Errorf("segment %d has position %d (gap or duplicate)", i, s.Position)
		}
	}
}

func TestReadFrom(t *testing.T) {
	tlog := NewTranscriptLog()
	for i := 0; i < 4; i++ {
		tlog.Append(Segment{Text: fmt.Sprintf("seg %d", i)})
	}

	segs := tlog.ReadFrom(2)
	if len(segs) != 2 {
		t.Fatalf("ReadFrom(2) length = %d, want 2", len(segs))
	}
	if segs[0].Position != 2 || segs[1].Position != 3 {
		t.Errorf("positions = %d,%d, want 2,3", segs[0].Position, segs[1].Position)
	}

	if segs := tlog.ReadFrom(100); segs != nil {
		t.Errorf("ReadFrom past tail = %v, want nil", segs)
	}
}

func TestCursorOnlyAdvances(t *testing.T) {
	tlog := NewTranscriptLog()
	var cur Cursor

	seen := map[int]bool{}
	for round := 0; round < 3; round++ {
		tlog.Append(Segment{Text: "a"})
		tlog.Append(Segment{Text: "b"})
		prev := cur.Position()
		for _, seg := range cur.Next(tlog) {
			if seen[seg.Position] {
				t.Fatalf("position %d read twice", seg.Position)
			}
			seen[seg.Position] = true
		}
		if cur.Position() < prev {
			t.Fatalf("cursor moved backwards: %d -> %d", prev, cur.Position())
		}
	}
	if len(seen) != 6 {
		t.Errorf("read %d segments, want 6", len(seen))
	}

	// No new segments: cursor stays put and returns nothing.
	if segs := cur.Next(tlog); len(segs) != 0 {
		t.Errorf("expected no segments, got %d", len(segs))
	}
}

func TestIndependentCursors(t *testing.T) {
	tlog := NewTranscriptLog()
	tlog.Append(Segment{Text: "a"})
	tlog.Append(Segment{Text: "b"})

	var fast, slow Cursor
	if got := len(fast.Next(tlog)); got != 2 {
		t.Fatalf("fast read %d, want 2", got)
	}

	tlog.Append(Segment{Text: "c"})

	// The slow consumer still sees everything from the start.
	if got := len(slow.Next(tlog)); got != 3 {
		t.Errorf("slow read %d, want 3", got)
	}
	if got := len(fast.Next(tlog)); got != 1 {
		t.Errorf("fast second read %d, want 1", got)
	}
}
