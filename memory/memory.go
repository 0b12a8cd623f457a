// Package memory provides per-thread session memory: a bounded, ordered
// window of condensed prior-run summaries keyed by thread id. Reads are
// best-effort at the call site; a failing store degrades a run to empty
// memory, never to a run failure.
package memory

import "context"

// DefaultWindow is the per-thread summary window when none is configured.
const DefaultWindow = 10

// Store keeps the last N summaries per thread, oldest evicted first.
type Store interface {
	// Append adds a summary to the thread's window.
	Append(ctx context.Context, threadID, summary string) error
	// Read returns the thread's summaries in append order.
	// An unknown thread yields an empty slice, not an error.
	Read(ctx context.Context, threadID string) ([]string, error)
}
