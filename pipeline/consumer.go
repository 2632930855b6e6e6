package pipeline

import (
	"context"
	"time"

	"livecap/log"
)

// Consumer accepts one transcript segment and produces a side effect
// (print, remote page update, translation request).
type Consumer interface {
	Name() string
	Consume(ctx context.Context, seg Segment) error
}

// RunConsumer polls the transcript log on its own cadence and delivers each
// new segment to c in order, exactly once. A consumer error is logged and
// the cursor still advances, so a permanently failing segment is never
// reprocessed. Consumers never block each other or the producer; a slow
// consumer just accumulates cursor distance from the log's tail.
func RunConsumer(ctx context.Context, tlog *TranscriptLog, c Consumer, interval time.Duration) {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	var cur Cursor
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, seg := range cur.Next(tlog) {
				if ctx.Err() != nil {
					return
				}
				if err := c.Consume(ctx, seg); err != nil {
					log.Warnf("%s consumer: segment %d: %v", c.Name(), seg.Position, err)
				}
			}
		}
	}
}
