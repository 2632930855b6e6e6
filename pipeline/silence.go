package pipeline

import "time"

const (
	silenceWarnEvery = 8 * time.Second
	speechMinRatio   = 0.10
	speechClearRatio = 0.25 // higher threshold to clear warning (hysteresis)
)

type SilenceEvent int

const (
	SilenceNone      SilenceEvent = iota
	SilenceWarn                   // no speech kept for a sustained stretch
	SilenceWarnClear              // speech resumed after warning
)

// SilenceMonitor watches per-tick speech activity and raises a warning when
// the gate has kept nothing for a sustained stretch, clearing it with
// hysteresis once speech resumes. Purely advisory; it never alters the
// pipeline's behavior.
type SilenceMonitor struct {
	warnAt int

	ticks       int
	window      []bool
	speechCount int
	warned      bool
}

func NewSilenceMonitor(tick time.Duration) *SilenceMonitor {
	warnAt := int(silenceWarnEvery / tick)
	if warnAt < 1 {
		warnAt = 1
	}
	return &SilenceMonitor{
		warnAt: warnAt,
		window: make([]bool, warnAt),
	}
}

func (m *SilenceMonitor) ratio() float64 {
	n := m.warnAt
	if m.ticks < n {
		n = m.ticks
	}
	if n == 0 {
		return 1.0
	}
	return float64(m.speechCount) / float64(n)
}

func (m *SilenceMonitor) Tick(hasSpeech bool) SilenceEvent {
	idx := m.ticks % m.warnAt
	if m.ticks >= m.warnAt && m.window[idx] {
		m.speechCount--
	}
	m.window[idx] = hasSpeech
	if hasSpeech {
		m.speechCount++
	}
	m.ticks++

	r := m.ratio()

	if m.ticks >= m.warnAt && r < speechMinRatio && !m.warned {
		m.warned = true
		return SilenceWarn
	}
	if m.warned && r >= speechClearRatio {
		m.warned = false
		return SilenceWarnClear
	}
	return SilenceNone
}
