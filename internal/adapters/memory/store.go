// Package memory implements the message store port in process memory.
// It backs tests and proves the storage backend swaps beneath the query,
// thread, and consensus logic without touching them.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/courier/internal/ports/secondary"
)

// Store implements secondary.MessageStore with in-memory maps.
type Store struct {
	mu      sync.RWMutex
	queues  map[string]map[string][]byte
	order   map[string][]string
	corrupt map[string]bool
	seq     int
}

var _ secondary.MessageStore = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		queues:  map[string]map[string][]byte{},
		order:   map[string][]string{},
		corrupt: map[string]bool{},
	}
}

// Append stores the message under a sequential key.
func (s *Store) Append(ctx context.Context, queueID string, raw []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queues[queueID] == nil {
		s.queues[queueID] = map[string][]byte{}
	}
	s.seq++
	key := fmt.Sprintf("mem-%06d", s.seq)

	data := make([]byte, len(raw))
	copy(data, raw)
	s.queues[queueID][key] = data
	s.order[queueID] = append(s.order[queueID], key)

	return key, nil
}

// Keys returns the queue's keys in insertion order.
func (s *Store) Keys(ctx context.Context, queueID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.queues[queueID] == nil {
		return nil, fmt.Errorf("%w: %s", secondary.ErrQueueNotFound, queueID)
	}
	keys := make([]string, len(s.order[queueID]))
	copy(keys, s.order[queueID])
	return keys, nil
}

// Read returns one stored message.
func (s *Store) Read(ctx context.Context, queueID, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	queue := s.queues[queueID]
	if queue == nil {
		return nil, fmt.Errorf("%w: %s", secondary.ErrQueueNotFound, queueID)
	}
	if s.corrupt[queueID+"/"+key] {
		return nil, fmt.Errorf("%w: unreadable message %s in %s", secondary.ErrStorage, key, queueID)
	}
	data, ok := queue[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", secondary.ErrMessageNotFound, key, queueID)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Corrupt marks a stored message unreadable for tests: the key stays listed
// but reads fail with a storage error.
func (s *Store) Corrupt(queueID, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corrupt[queueID+"/"+key] = true
}
