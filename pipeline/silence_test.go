package pipeline

import (
	"testing"
	"time"
)

func newTestMonitor() *SilenceMonitor {
	// 100ms tick: warn window is 80 ticks.
	return NewSilenceMonitor(100 * time.Millisecond)
}

func TestSilenceWarnAfterWindow(t *testing.T) {
	m := newTestMonitor()
	for i := 0; i < 79; i++ {
		if ev := m.Tick(false); ev != SilenceNone {
			t.Fatalf("unexpected event at tick %d: %d", i, ev)
		}
	}
	if ev := m.Tick(false); ev != SilenceWarn {
		t.Fatalf("expected SilenceWarn at tick 80, got %d", ev)
	}
}

func TestSilenceWarnClearsOnSpeech(t *testing.T) {
	m := newTestMonitor()
	for i := 0; i < 80; i++ {
		m.Tick(false)
	}

	for i := 0; i < 80; i++ {
		if ev := m.Tick(true); ev == SilenceWarnClear {
			return
		}
	}
	t.Fatal("expected SilenceWarnClear after sustained speech")
}

func TestNoWarnDuringSpeech(t *testing.T) {
	m := newTestMonitor()
	for i := 0; i < 200; i++ {
		if ev := m.Tick(true); ev == SilenceWarn {
			t.Fatalf("unexpected warn during speech at tick %d", i)
		}
	}
}

func TestWarnOnlyOnce(t *testing.T) {
	m := newTestMonitor()
	warns := 0
	for i := 0; i < 300; i++ {
		if ev := m.Tick(false); ev == SilenceWarn {
			warns++
		}
	}
	if warns != 1 {
		t.Fatalf("expected exactly 1 SilenceWarn, got %d", warns)
	}
}

func TestWarnStaysDuringNoise(t *testing.T) {
	m := newTestMonitor()
	for i := 0; i < 80; i++ {
		m.Tick(false)
	}

	// Occasional gate false positives (10% speech) stay below the clear
	// threshold and must not clear the warning.
	clears := 0
	for i := 0; i < 80; i++ {
		speech := i%10 == 0
		if ev := m.Tick(speech); ev == SilenceWarnClear {
			clears++
		}
	}
	if clears > 0 {
		t.Fatalf("expected warning to stay with 10%% speech, got %d clears", clears)
	}
}
