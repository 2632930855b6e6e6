// Package renderer pushes transcript text to an externally rendered page.
package renderer

import "context"

// Renderer appends one line of text to a remote surface. A failure aborts
// only the calling consumer's delivery of that segment.
type Renderer interface {
	Update(ctx context.Context, text string) error
	Close() error
}
