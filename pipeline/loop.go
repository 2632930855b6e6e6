package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"livecap/audio"
	"livecap/log"
	"livecap/transcriber"
)

type LoopConfig struct {
	SampleRate     int
	Channels       int
	TickInterval   time.Duration
	NoSpeechCutoff float64 // drop sub-segments at or above this no-speech probability
	Language       string
	Task           string // transcriber.TaskTranscribe or TaskTranslate
	Prompt         string // optional initial prompt
	KeepAudio      bool   // retain burst WAV files instead of deleting them
	KeepDir        string // destination for retained audio (default: cwd)
	TempDir        string // scratch space for burst WAV files (default: os.TempDir)
}

// Loop is the single-threaded scheduler that drains the buffer on a fixed
// tick, hands each burst to the transcriber and appends the surviving text
// to the transcript log. It is the log's only writer.
type Loop struct {
	cfg LoopConfig
	buf *SegmentBuffer
	out *TranscriptLog
	tr  transcriber.Transcriber
	mon *SilenceMonitor
}

func NewLoop(cfg LoopConfig, buf *SegmentBuffer, out *TranscriptLog, tr transcriber.Transcriber) *Loop {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 100 * time.Millisecond
	}
	if cfg.NoSpeechCutoff <= 0 {
		cfg.NoSpeechCutoff = 0.5
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if cfg.Task == "" {
		cfg.Task = transcriber.TaskTranscribe
	}
	return &Loop{
		cfg: cfg,
		buf: buf,
		out: out,
		tr:  tr,
		mon: NewSilenceMonitor(cfg.TickInterval),
	}
}

// Run ticks until ctx is canceled. Per-burst transcription failures are
// logged and the loop keeps ticking; nothing is ever retried.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			switch l.mon.Tick(l.buf.TakeKept() > 0) {
			case SilenceWarn:
				log.Warn("no speech detected recently")
			case SilenceWarnClear:
				log.Info("speech resumed")
			}
			l.drainOnce(ctx)
		}
	}
}

// drainOnce processes at most one burst: drain, serialize, transcribe,
// filter, append.
func (l *Loop) drainOnce(ctx context.Context) {
	log.BufferStatus(l.buf.Len(), l.out.Len())
	if l.buf.Len() == 0 {
		return
	}

	captureStart := time.Now()
	burst, truncated := l.buf.Drain()

	wavPath := filepath.Join(l.cfg.TempDir, fmt.Sprintf("segment_%d.wav", captureStart.UnixNano()))
	if err := audio.WriteWAVFile(wavPath, burst.PCM(), l.cfg.SampleRate, l.cfg.Channels); err != nil {
		log.Errorf("burst serialization failed: %v", err)
		return
	}
	wavData, err := os.ReadFile(wavPath)
	l.finishAudioFile(wavPath)
	if err != nil {
		log.Errorf("burst read-back failed: %v", err)
		return
	}

	result, err := l.tr.Transcribe(ctx, wavData, transcriber.Options{
		Language: l.cfg.Language,
		Task:     l.cfg.Task,
		Prompt:   l.cfg.Prompt,
	})
	if err != nil {
		// Re-sending stale audio is not meaningful, so the burst is dropped.
		log.Warnf("transcription failed, burst dropped: %v", err)
		return
	}
	if m := result.Metrics; m != nil {
		log.NetworkTiming(l.tr.Name(), m.ConnReused, m.DNS, m.TLS, m.TTFB, m.Sum())
	}

	text := JoinSpeech(result.Segments, l.cfg.NoSpeechCutoff)
	captureEnd := time.Now()

	// A call finishing after shutdown must not append.
	if ctx.Err() != nil {
		return
	}
	// Silence suppression, second stage: transcription of a kept burst may
	// still come back empty.
	if text == "" {
		return
	}

	seg := Segment{
		Text:            text,
		Truncated:       truncated,
		CaptureStart:    captureStart,
		CaptureEnd:      captureEnd,
		ProcessingDelay: captureEnd.Sub(captureStart),
	}
	pos := l.out.Append(seg)
	log.SegmentAppended(pos, seg.ProcessingDelay, truncated, len(text))
	log.TranscriptionText(text)
}

// finishAudioFile moves the burst WAV beside the working directory when
// retention is on, otherwise deletes it. Failures are logged, never fatal.
func (l *Loop) finishAudioFile(path string) {
	if l.cfg.KeepAudio {
		name := time.Now().Format("2006-01-02T15-04-05.000") + ".wav"
		dest := filepath.Join(l.cfg.KeepDir, name)
		if err := os.Rename(path, dest); err != nil {
			log.Warnf("failed to retain audio file: %v", err)
		}
		return
	}
	if err := os.Remove(path); err != nil {
		log.Warnf("failed to remove temp audio file: %v", err)
	}
}

// JoinSpeech keeps sub-segments whose no-speech probability is below the
// cutoff and joins their text with single spaces.
func JoinSpeech(segs []transcriber.Segment, cutoff float64) string {
	var kept []string
	for _, s := range segs {
		if s.NoSpeechProb >= cutoff {
			continue
		}
		if t := strings.TrimSpace(s.Text); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}
