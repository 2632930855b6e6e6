package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"livecap/transcriber"
)

func newTestLoop(t *testing.T, tr transcriber.Transcriber, mutate func(*LoopConfig)) (*Loop, *SegmentBuffer, *TranscriptLog) {
	t.Helper()
	cfg := LoopConfig{
		SampleRate:     16000,
		Channels:       1,
		TickInterval:   time.Millisecond,
		NoSpeechCutoff: 0.5,
		TempDir:        t.TempDir(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	buf := NewSegmentBuffer(AmplitudeGate(testThreshold), 10)
	tlog := NewTranscriptLog()
	return NewLoop(cfg, buf, tlog, tr), buf, tlog
}

func pushSpeech(buf *SegmentBuffer, n int) {
	for i := 0; i < n; i++ {
		buf.Push(Frame{PCM: []byte{0x10, 0x01, 0x10, 0x01}, Amplitude: 500, CapturedAt: time.Now()})
	}
}

func TestDrainAppendsSegment(t *testing.T) {
	tr := transcriber.NewFakeText("hello world")
	loop, buf, tlog := newTestLoop(t, tr, nil)

	pushSpeech(buf, 3)
	loop.drainOnce(context.Background())

	if tlog.Len() != 1 {
		t.Fatalf("log length = %d, want 1", tlog.Len())
	}
	seg := tlog.ReadFrom(0)[0]
	if seg.Text != "hello world" {
		t.Errorf("text = %q, want %q", seg.Text, "hello world")
	}
	if seg.Truncated {
		t.Error("segment should not be truncated")
	}
	if seg.ProcessingDelay < 0 {
		t.Error("negative processing delay")
	}
	if seg.CaptureEnd.Before(seg.CaptureStart) {
		t.Error("captureEnd before captureStart")
	}
	if len(tr.LastWAV()) == 0 {
		t.Error("transcriber did not receive WAV data")
	}
}

func TestDrainMarksTruncated(t *testing.T) {
	tr := transcriber.NewFakeText("long burst")
	loop, buf, tlog := newTestLoop(t, tr, nil)

	pushSpeech(buf, 15) // cap is 10
	loop.drainOnce(context.Background())

	seg := tlog.ReadFrom(0)[0]
	if !seg.Truncated {
		t.Error("segment should be truncated")
	}
}

func TestNoSpeechFilter(t *testing.T) {
	// Two sub-segments at 0.2 and 0.7: only the first survives the cutoff.
	tr := transcriber.NewFake([]*transcriber.Result{{
		Text: "kept dropped",
		Segments: []transcriber.Segment{
			{Text: "kept", NoSpeechProb: 0.2},
			{Text: "dropped", NoSpeechProb: 0.7},
		},
	}}, nil)
	loop, buf, tlog := newTestLoop(t, tr, nil)

	pushSpeech(buf, 2)
	loop.drainOnce(context.Background())

	seg := tlog.ReadFrom(0)[0]
	if seg.Text != "kept" {
		t.Errorf("text = %q, want %q", seg.Text, "kept")
	}
}

func TestEmptyTranscriptionAppendsNothing(t *testing.T) {
	tr := transcriber.NewFake([]*transcriber.Result{
		{Text: "", Segments: nil},
		{Text: "later", Segments: []transcriber.Segment{{Text: "later", NoSpeechProb: 0.1}}},
	}, nil)
	loop, buf, tlog := newTestLoop(t, tr, nil)

	pushSpeech(buf, 2)
	loop.drainOnce(context.Background())
	if tlog.Len() != 0 {
		t.Fatalf("log length = %d after empty result, want 0", tlog.Len())
	}

	// The next burst is unaffected and still gets position 0.
	pushSpeech(buf, 2)
	loop.drainOnce(context.Background())
	if tlog.Len() != 1 {
		t.Fatalf("log length = %d, want 1", tlog.Len())
	}
	if pos := tlog.ReadFrom(0)[0].Position; pos != 0 {
		t.Errorf("position = %d, want 0", pos)
	}
}

func TestTranscriptionFailureRecovered(t *testing.T) {
	failing := transcriber.NewFake(nil, errors.New("api unavailable"))
	loop, buf, tlog := newTestLoop(t, failing, nil)

	pushSpeech(buf, 2)
	loop.drainOnce(context.Background())
	if tlog.Len() != 0 {
		t.Fatalf("log length = %d after failure, want 0", tlog.Len())
	}
	if buf.Len() != 0 {
		t.Error("failed burst should still consume the buffered audio")
	}

	// The loop keeps working for subsequent bursts.
	ok := transcriber.NewFakeText("recovered")
	loop2, buf2, tlog2 := newTestLoop(t, ok, nil)
	pushSpeech(buf2, 2)
	loop2.drainOnce(context.Background())
	if tlog2.Len() != 1 {
		t.Errorf("log length = %d, want 1", tlog2.Len())
	}
}

func TestNoAppendAfterShutdown(t *testing.T) {
	tr := transcriber.NewFakeText("too late")
	loop, buf, tlog := newTestLoop(t, tr, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cancel() // idempotent

	pushSpeech(buf, 2)
	loop.drainOnce(ctx)
	if tlog.Len() != 0 {
		t.Errorf("log length = %d after shutdown, want 0", tlog.Len())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	tr := transcriber.NewFakeText("tick")
	loop, buf, tlog := newTestLoop(t, tr, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	pushSpeech(buf, 2)
	deadline := time.After(2 * time.Second)
	for tlog.Len() == 0 {
		select {
		case <-deadline:
			t.Fatal("loop never appended a segment")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancel")
	}
}

func TestKeepAudioRetainsWAV(t *testing.T) {
	keepDir := t.TempDir()
	tr := transcriber.NewFakeText("kept audio")
	loop, buf, _ := newTestLoop(t, tr, func(cfg *LoopConfig) {
		cfg.KeepAudio = true
		cfg.KeepDir = keepDir
	})

	pushSpeech(buf, 2)
	loop.drainOnce(context.Background())

	entries, err := os.ReadDir(keepDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("retained %d files, want 1", len(entries))
	}
	if filepath.Ext(entries[0].Name()) != ".wav" {
		t.Errorf("retained file %q is not a wav", entries[0].Name())
	}
}

func TestJoinSpeech(t *testing.T) {
	segs := []transcriber.Segment{
		{Text: " hello", NoSpeechProb: 0.1},
		{Text: "there ", NoSpeechProb: 0.3},
		{Text: "noise", NoSpeechProb: 0.9},
		{Text: "   ", NoSpeechProb: 0.1},
	}
	if got := JoinSpeech(segs, 0.5); got != "hello there" {
		t.Errorf("JoinSpeech = %q, want %q", got, "hello there")
	}
	if got := JoinSpeech(nil, 0.5); got != "" {
		t.Errorf("JoinSpeech(nil) = %q, want empty", got)
	}
	if got := strings.TrimSpace(JoinSpeech(segs, 0.05)); got != "" {
		t.Errorf("cutoff below all probs should drop everything, got %q", got)
	}
}
