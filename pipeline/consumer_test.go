package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingConsumer struct {
	mu        sync.Mutex
	positions []int
	failOn    map[int]bool
}

func (c *recordingConsumer) Name() string { return "recording" }

func (c *recordingConsumer) Consume(_ context.Context, seg Segment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positions = append(c.positions, seg.Position)
	if c.failOn[seg.Position] {
		return errors.New("consumer failed")
	}
	return nil
}

func (c *recordingConsumer) seen() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int, len(c.positions))
	copy(out, c.positions)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("condition not met in time")
		case <-time.After(2 * time.Millisecond):
		}
	}
}

func TestConsumerDeliversInOrder(t *testing.T) {
	tlog := NewTranscriptLog()
	c := &recordingConsumer{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		RunConsumer(ctx, tlog, c, time.Millisecond)
		close(done)
	}()

	tlog.Append(Segment{Text: "a"})
	tlog.Append(Segment{Text: "b"})
	waitFor(t, func() bool { return len(c.seen()) == 2 })

	tlog.Append(Segment{Text: "c"})
	waitFor(t, func() bool { return len(c.seen()) == 3 })

	cancel()
	<-done

	for i, pos := range c.seen() {
		if pos != i {
			t.Errorf("delivery %d got position %d (out of order or duplicate)", i, pos)
		}
	}
}

func TestConsumerErrorStillAdvances(t *testing.T) {
	tlog := NewTranscriptLog()
	c := &recordingConsumer{failOn: map[int]bool{0: true}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go RunConsumer(ctx, tlog, c, time.Millisecond)

	tlog.Append(Segment{Text: "fails"})
	tlog.Append(Segment{Text: "ok"})
	waitFor(t, func() bool { return len(c.seen()) == 2 })

	// Give the poller a few more ticks; the failed position must not be redelivered.
	time.Sleep(20 * time.Millisecond)
	seen := c.seen()
	if len(seen) != 2 {
		t.Fatalf("delivered %d times, want 2 (no reprocessing)", len(seen))
	}
	if seen[0] != 0 || seen[1] != 1 {
		t.Errorf("positions = %v, want [0 1]", seen)
	}
}

func TestSlowConsumerDoesNotBlockOthers(t *testing.T) {
	tlog := NewTranscriptLog()
	fast := &recordingConsumer{}
	slow := &recordingConsumer{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go RunConsumer(ctx, tlog, fast, time.Millisecond)
	go RunConsumer(ctx, tlog, slow, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		tlog.Append(Segment{Text: "x"})
	}

	waitFor(t, func() bool { return len(fast.seen()) == 3 })
	// The slow consumer eventually catches up on its own schedule.
	waitFor(t, func() bool { return len(slow.seen()) == 3 })
}
