package transcriber

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"
)

type NetworkMetrics struct {
	DNS         time.Duration
	ConnWait    time.Duration
	TCP         time.Duration
	TLS         time.Duration
	ReqHeaders  time.Duration
	ReqBody     time.Duration
	TTFB        time.Duration
	Download    time.Duration
	Total       time.Duration
	ConnReused  bool
	TLSProtocol string
}

func (m *NetworkMetrics) Sum() time.Duration {
	return m.ConnWait + m.DNS + m.TCP + m.TLS + m.ReqHeaders + m.ReqBody + m.TTFB + m.Download
}

func firstNonEmpty(h http.Header, keys ...string) string {
	for _, k := range keys {
		if v := h.Get(k); v != "" {
			return v
		}
	}
	return "?"
}

// Segment is one whisper sub-segment of a transcription response.
type Segment struct {
	Text         string
	NoSpeechProb float64
	AvgLogProb   float64
	Start        float64
	End          float64
}

type Result struct {
	Text      string
	Segments  []Segment
	Metrics   *NetworkMetrics
	RateLimit string
}

// Options configure a single transcription call.
type Options struct {
	Language string
	Task     string // "transcribe" or "translate"
	Prompt   string // optional initial prompt
}

const (
	TaskTranscribe = "transcribe"
	TaskTranslate  = "translate"
)

// Transcriber turns one WAV-encoded audio burst into text. A call failure
// covers the whole burst; callers decide whether to keep going.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, wavData []byte, opts Options) (*Result, error)
}

type baseTranscriber struct {
	client *TracedClient
	apiKey string
}

// New picks a provider from the environment, preferring Groq.
func New() (Transcriber, error) {
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		return NewGroq(key), nil
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return NewOpenAI(key), nil
	}
	return nil, fmt.Errorf("set GROQ_API_KEY or OPENAI_API_KEY environment variable")
}

// endpointPath maps a task to the whisper-style API path suffix.
func endpointPath(task string) string {
	if task == TaskTranslate {
		return "translations"
	}
	return "transcriptions"
}
