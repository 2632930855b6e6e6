package main

import (
	"context"
	"fmt"
	"time"

	"livecap/log"
	"livecap/pipeline"
	"livecap/renderer"
	"livecap/translator"
)

func segmentText(seg pipeline.Segment) string {
	if seg.Truncated {
		return seg.Text + " (truncated)"
	}
	return seg.Text
}

// consoleConsumer prints transcribed segments to stdout.
type consoleConsumer struct {
	showDelay bool
}

func (c *consoleConsumer) Name() string { return "console" }

func (c *consoleConsumer) Consume(_ context.Context, seg pipeline.Segment) error {
	if c.showDelay {
		fmt.Printf("\nTranscribed: %s [Delay: %.2fs]\n", segmentText(seg), seg.ProcessingDelay.Seconds())
	} else {
		fmt.Printf("\nTranscribed: %s\n", segmentText(seg))
	}
	return nil
}

// translatedEchoConsumer presents segments that the transcriber already
// translated (whisper task=translate).
type translatedEchoConsumer struct {
	showDelay bool
}

func (c *translatedEchoConsumer) Name() string { return "translated-echo" }

func (c *translatedEchoConsumer) Consume(_ context.Context, seg pipeline.Segment) error {
	if c.showDelay {
		fmt.Printf("\nTranslated: %s [Delay: %.2fs]\n", segmentText(seg), seg.ProcessingDelay.Seconds())
	} else {
		fmt.Printf("\nTranslated: %s\n", segmentText(seg))
	}
	return nil
}

// translatorConsumer runs each segment through the LLM translator at its
// own pace and reports the combined capture and translation delay.
type translatorConsumer struct {
	tr        translator.Translator
	showDelay bool
}

func (c *translatorConsumer) Name() string { return "translator" }

func (c *translatorConsumer) Consume(ctx context.Context, seg pipeline.Segment) error {
	start := time.Now()
	out, err := c.tr.Translate(ctx, seg.Text)
	if err != nil {
		return fmt.Errorf("segment %d: %w", seg.Position, err)
	}
	translationDelay := time.Since(start)
	log.Debugf("translated segment %d in %.2fs", seg.Position, translationDelay.Seconds())

	if c.showDelay {
		fmt.Printf("\nTranslated: %s [Delay: %.2fs] [Translation delay: %.2fs]\n",
			out, seg.ProcessingDelay.Seconds(), translationDelay.Seconds())
	} else {
		fmt.Printf("\nTranslated: %s\n", out)
	}
	return nil
}

// rendererConsumer appends each segment's text to the remote page.
type rendererConsumer struct {
	page renderer.Renderer
}

func (c *rendererConsumer) Name() string { return "renderer" }

func (c *rendererConsumer) Consume(ctx context.Context, seg pipeline.Segment) error {
	return c.page.Update(ctx, segmentText(seg))
}
