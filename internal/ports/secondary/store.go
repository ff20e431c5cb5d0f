// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application drives
// external systems.
package secondary

import (
	"context"
	"errors"
)

// Storage error taxonomy. Adapters wrap these sentinels with fmt.Errorf so
// callers can classify failures with errors.Is while keeping detail.
var (
	// ErrQueueNotFound is returned when the named queue does not exist and
	// creation was not requested.
	ErrQueueNotFound = errors.New("queue not found")

	// ErrMessageNotFound is returned when a key does not resolve to a stored
	// message.
	ErrMessageNotFound = errors.New("message not found")

	// ErrStorage wraps failures of the storage layer itself: a queue that
	// cannot be created, written, or read.
	ErrStorage = errors.New("storage error")
)

// MessageStore is the narrow port over the durable append-only message store.
// One store holds many named queues; panel-internal queues are namespaced by
// the caller and invisible to cross-panel scans.
//
// Contract:
//   - Append is safe under concurrent callers: no lost writes, no duplicate
//     keys, and readers never observe a partially written message.
//   - Keys returns a best-effort snapshot; writes landing during a scan may
//     or may not be observed, but never partially.
//   - Messages are immutable once stored. The core never deletes.
type MessageStore interface {
	// Append durably stores a raw message in the queue, creating the queue
	// if needed, and returns its unique opaque key.
	Append(ctx context.Context, queueID string, raw []byte) (string, error)

	// Keys lists the keys currently visible in the queue.
	Keys(ctx context.Context, queueID string) ([]string, error)

	// Read returns the raw bytes of one stored message.
	Read(ctx context.Context, queueID, key string) ([]byte, error)
}

// SessionRunner launches one worker session and waits for it to finish.
// Spawning is plumbing around the core: implementations only spawn and wait,
// they never interpret artifacts or message content.
type SessionRunner interface {
	// RunSession runs the role CLI with the given prompt on stdin and
	// returns its exit code.
	RunSession(ctx context.Context, cliCommand, prompt string) (int, error)
}
