package renderer

import (
	"context"
	"sync"
)

// Fake records updates for tests.
type Fake struct {
	Err error

	mu    sync.Mutex
	lines []string
}

func (f *Fake) Update(_ context.Context, text string) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	f.lines = append(f.lines, text)
	f.mu.Unlock()
	return nil
}

func (f *Fake) Close() error { return nil }

func (f *Fake) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.lines))
	copy(out, f.lines)
	return out
}
