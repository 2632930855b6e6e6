// Package translator adapts an LLM backend into the per-segment
// translation capability.
package translator

import "context"

// Translator turns one transcript segment's text into its translation.
// Invoked once per segment, independently paced by the consumer.
type Translator interface {
	Name() string
	Translate(ctx context.Context, text string) (string, error)
}
