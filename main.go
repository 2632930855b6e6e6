package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"livecap/audio"
	"livecap/log"
	"livecap/pipeline"
	"livecap/renderer"
	"livecap/shutdown"
	"livecap/transcriber"
	"livecap/translator"
)

var version = "dev"

const (
	defaultSampleRate = 16000
	defaultChannels   = 1
	// Large frames keep per-call transcription cost dominant over
	// scheduling overhead.
	defaultFrameSize  = 1024 * 128
	defaultThreshold  = 300
	defaultTruncCap   = 60
	promptFile        = "transcribe_prompt.txt"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	godotenv.Load()

	listFlag := flag.Bool("list-devices", false, "List available audio input devices and exit")
	deviceFlag := flag.String("device", "", "Audio input device index or partial name to use")
	setupFlag := flag.Bool("setup", false, "Select microphone device interactively")
	modeFlag := flag.String("mode", "transcribe", "transcribe, translate-whisper, or translate-llm")
	langFlag := flag.String("lang", "", "Language code for transcription (empty = auto-detect)")
	urlFlag := flag.String("url", "", "Page-update websocket endpoint (ws:// or wss://)")
	keepFlag := flag.Bool("keep", false, "Keep temporary audio files")
	showDelayFlag := flag.Bool("show-delay", false, "Show per-segment processing delay")
	translateModelFlag := flag.String("model-translate", "", "LLM model id for translation")
	translatePromptFlag := flag.String("translation-prompt", "", "Path to translation prompt file")
	thresholdFlag := flag.Float64("silence-threshold", defaultThreshold, "Mean-amplitude gate threshold")
	truncCapFlag := flag.Int("trunc-cap", defaultTruncCap, "Max buffered frames per burst; overflow is discarded")
	sampleRateFlag := flag.Int("rate", defaultSampleRate, "Capture sample rate in Hz")
	frameSizeFlag := flag.Int("frame-size", defaultFrameSize, "Capture frame size in samples")
	drainFlag := flag.Duration("drain-interval", 100*time.Millisecond, "Segmentation loop tick interval")
	consumerFlag := flag.Duration("consumer-interval", 100*time.Millisecond, "Consumer poll interval")
	cutoffFlag := flag.Float64("no-speech-cutoff", 0.5, "Drop sub-segments at or above this no-speech probability")
	logPathFlag := flag.String("logpath", "", "Log directory path (default: OS-specific location)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("livecap %s\n", version)
		return nil
	}

	switch *modeFlag {
	case "transcribe", "translate-whisper", "translate-llm":
	default:
		return fmt.Errorf("unknown mode %q (use transcribe, translate-whisper, or translate-llm)", *modeFlag)
	}
	if *modeFlag == "translate-llm" && *translatePromptFlag == "" {
		return fmt.Errorf("-translation-prompt is required for translate-llm mode")
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		return fmt.Errorf("resolving log directory: %w", err)
	}
	log.SetDir(logPath)
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	actx, err := audio.NewContext()
	if err != nil {
		return fmt.Errorf("initializing audio context: %w", err)
	}
	defer actx.Close()

	if *listFlag {
		return listDevices(actx)
	}

	var selectedDevice *audio.DeviceInfo
	if *deviceFlag != "" {
		devices, err := actx.Devices()
		if err != nil {
			return fmt.Errorf("enumerating devices: %w", err)
		}
		selectedDevice, err = audio.Match(devices, *deviceFlag)
		if err != nil {
			return fmt.Errorf("%w (use -list-devices to see available devices)", err)
		}
		fmt.Printf("Using audio device: %s\n", selectedDevice.Name)
	} else if *setupFlag {
		devices, serr := actx.Devices()
		if serr == nil {
			selectedDevice, serr = audio.SelectDevice(devices)
		}
		if errors.Is(serr, audio.ErrSelectionCanceled) {
			return serr
		}
		if serr != nil {
			log.Warnf("device selection failed: %v", serr)
			fmt.Printf("Warning: device selection failed: %v\n", serr)
			fmt.Println("Falling back to default device")
			selectedDevice = nil
		}
	}

	tr, err := transcriber.New()
	if err != nil {
		return err
	}

	task := transcriber.TaskTranscribe
	if *modeFlag == "translate-whisper" {
		task = transcriber.TaskTranslate
	}

	// Optional initial prompt, same file the original workflow uses.
	var initialPrompt string
	if data, err := os.ReadFile(promptFile); err == nil {
		initialPrompt = strings.TrimSpace(string(data))
	}

	keepDir, err := os.Getwd()
	if err != nil {
		keepDir = "."
	}

	buf := pipeline.NewSegmentBuffer(pipeline.AmplitudeGate(*thresholdFlag), *truncCapFlag)
	tlog := pipeline.NewTranscriptLog()
	loop := pipeline.NewLoop(pipeline.LoopConfig{
		SampleRate:     *sampleRateFlag,
		Channels:       defaultChannels,
		TickInterval:   *drainFlag,
		NoSpeechCutoff: *cutoffFlag,
		Language:       *langFlag,
		Task:           task,
		Prompt:         initialPrompt,
		KeepAudio:      *keepFlag,
		KeepDir:        keepDir,
	}, buf, tlog, tr)

	ctx, cancel := shutdown.Context(context.Background())
	defer cancel()

	capture, err := actx.NewCapture(selectedDevice, audio.CaptureConfig{
		SampleRate: uint32(*sampleRateFlag),
		Channels:   defaultChannels,
		FrameSize:  uint32(*frameSizeFlag),
	})
	if err != nil {
		return fmt.Errorf("opening audio device: %w", err)
	}
	defer capture.Close()

	// Capture context: gate and buffer only, O(frame size), nothing blocking.
	capture.SetCallback(func(data []byte, _ uint32) {
		buf.Push(pipeline.NewFrame(data, time.Now()))
	})
	if err := capture.Start(); err != nil {
		return fmt.Errorf("starting audio stream: %w", err)
	}

	log.SessionStart(tr.Name(), *modeFlag, capture.DeviceName())
	fmt.Println("Recording started. Speak into the microphone. Press Ctrl+C to exit.")

	// Mid-capture device loss triggers an orderly shutdown.
	go func() {
		select {
		case ferr := <-capture.Faults():
			log.Errorf("stream fault: %v", ferr)
			fmt.Fprintf(os.Stderr, "\nStream fault: %v\n", ferr)
			cancel()
		case <-ctx.Done():
		}
	}()

	consumers, cleanup, err := buildConsumers(ctx, *modeFlag, *urlFlag, *showDelayFlag,
		*translateModelFlag, *translatePromptFlag)
	if err != nil {
		return err
	}
	defer cleanup()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		loop.Run(ctx)
	}()
	for _, c := range consumers {
		wg.Add(1)
		go func(c pipeline.Consumer) {
			defer wg.Done()
			pipeline.RunConsumer(ctx, tlog, c, *consumerFlag)
		}(c)
	}

	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")
	capture.Stop()
	capture.ClearCallback()
	wg.Wait()

	log.SessionEnd(tlog.Len())
	fmt.Println("Resources cleaned up. Exiting.")
	return nil
}

// buildConsumers wires the fan-out for the selected mode plus the optional
// page renderer. The returned cleanup closes the renderer connection.
func buildConsumers(ctx context.Context, mode, pageURL string, showDelay bool, translateModel, translatePromptPath string) ([]pipeline.Consumer, func(), error) {
	var consumers []pipeline.Consumer
	cleanup := func() {}

	switch mode {
	case "transcribe":
		consumers = append(consumers, &consoleConsumer{showDelay: showDelay})
	case "translate-whisper":
		// Whisper already produced English text; just present it.
		consumers = append(consumers, &translatedEchoConsumer{showDelay: showDelay})
	case "translate-llm":
		promptData, err := os.ReadFile(translatePromptPath)
		if err != nil {
			return nil, nil, fmt.Errorf("reading translation prompt: %w", err)
		}
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, nil, fmt.Errorf("translate-llm mode requires OPENAI_API_KEY")
		}
		tl := translator.NewOpenAI(apiKey, translateModel, string(promptData))
		consumers = append(consumers, &translatorConsumer{tr: tl, showDelay: showDelay})
	}

	if pageURL != "" {
		page, err := renderer.Dial(ctx, pageURL)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { page.Close() }
		consumers = append(consumers, &rendererConsumer{page: page})
	}

	return consumers, cleanup, nil
}

func listDevices(actx audio.Context) error {
	devices, err := actx.Devices()
	if err != nil {
		return fmt.Errorf("enumerating devices: %w", err)
	}
	fmt.Println("\nAvailable audio input devices:")
	fmt.Println(strings.Repeat("-", 50))
	for i, d := range devices {
		btTag := ""
		if audio.IsBluetooth(d.Name) {
			btTag = " [BT]"
		}
		fmt.Printf("Device %d: %s%s\n", i, d.Name, btTag)
	}
	return nil
}
