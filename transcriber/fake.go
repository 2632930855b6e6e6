package transcriber

import (
	"context"
	"sync"
)

// FakeTranscriber returns canned results for tests. Each call pops the next
// queued result; the last one repeats once the queue is exhausted.
type FakeTranscriber struct {
	mu      sync.Mutex
	results []*Result
	err     error
	calls   int
	lastWAV []byte
}

func NewFake(results []*Result, err error) *FakeTranscriber {
	return &FakeTranscriber{results: results, err: err}
}

// NewFakeText is a convenience for a single full-confidence segment.
func NewFakeText(text string) *FakeTranscriber {
	return NewFake([]*Result{{
		Text:     text,
		Segments: []Segment{{Text: text, NoSpeechProb: 0.01}},
	}}, nil)
}

func (f *FakeTranscriber) Name() string { return "fake" }

func (f *FakeTranscriber) Transcribe(_ context.Context, wavData []byte, _ Options) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastWAV = append([]byte(nil), wavData...)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) == 0 {
		return &Result{}, nil
	}
	idx := f.calls - 1
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	return f.results[idx], nil
}

func (f *FakeTranscriber) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FakeTranscriber) LastWAV() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastWAV
}
