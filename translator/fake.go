package translator

import (
	"context"
	"sync"
)

// Fake echoes inputs with a fixed prefix for tests.
type Fake struct {
	Prefix string
	Err    error

	mu    sync.Mutex
	calls []string
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Translate(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	return f.Prefix + text, nil
}

func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}
