package app

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/mail"
	"time"

	"github.com/example/courier/internal/core/query"
	"github.com/example/courier/internal/core/thread"
	inmail "github.com/example/courier/internal/mail"
	"github.com/example/courier/internal/models"
	"github.com/example/courier/internal/ports/secondary"
)

// MailboxServiceImpl implements the MailboxService interface over a message
// store.
type MailboxServiceImpl struct {
	store  secondary.MessageStore
	logger *log.Logger
	now    func() time.Time
}

// NewMailboxService creates a MailboxService with injected dependencies.
// A nil logger discards warnings.
func NewMailboxService(store secondary.MessageStore, logger *log.Logger) *MailboxServiceImpl {
	if logger == nil {
		logger = log.New(discard{}, "", 0)
	}
	return &MailboxServiceImpl{store: store, logger: logger, now: time.Now}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// Send appends a raw message to the queue and returns its key.
func (s *MailboxServiceImpl) Send(ctx context.Context, queueID string, raw []byte) (string, error) {
	key, err := s.store.Append(ctx, queueID, raw)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	return key, nil
}

// Search scans the queue once, extracting metadata per message without
// loading bodies, and returns matches most recent first. A message that
// cannot be read is skipped with a warning; the scan never aborts for one
// bad record. A malformed since value aborts the whole query.
func (s *MailboxServiceImpl) Search(ctx context.Context, queueID string, criteria query.Criteria) ([]models.Metadata, error) {
	filter, err := query.Compile(criteria, s.now())
	if err != nil {
		return nil, err
	}

	results := []models.Metadata{}
	err = s.scan(ctx, queueID, func(m models.Metadata) {
		if filter.Matches(m) {
			results = append(results, m)
		}
	})
	if err != nil {
		return nil, err
	}

	return query.SortAndLimit(results, criteria.Limit), nil
}

// ReadMessage loads a single message in full: headers, metadata, and the
// decoded plain-text body. This is the only operation that materializes
// bodies.
func (s *MailboxServiceImpl) ReadMessage(ctx context.Context, queueID, key string) (*models.FullMessage, error) {
	raw, err := s.store.Read(ctx, queueID, key)
	if err != nil {
		return nil, err
	}

	full := &models.FullMessage{
		Metadata: inmail.Extract(key, raw),
		Headers:  map[string][]string{},
		Body:     inmail.Body(raw),
	}
	if msg, err := mail.ReadMessage(bytes.NewReader(raw)); err == nil {
		full.Headers = msg.Header
	}
	return full, nil
}

// Thread returns the transitive closure of messages connected to messageID,
// oldest first. The queue is snapshotted into metadata once; the fixpoint
// iteration runs over that snapshot.
func (s *MailboxServiceImpl) Thread(ctx context.Context, queueID, messageID string) ([]models.Metadata, error) {
	var snapshot []models.Metadata
	err := s.scan(ctx, queueID, func(m models.Metadata) {
		snapshot = append(snapshot, m)
	})
	if err != nil {
		return nil, err
	}
	return thread.Resolve(messageID, snapshot), nil
}

// scan walks every visible message in the queue, extracting metadata and
// passing it to visit. Per-message read failures are logged and skipped.
func (s *MailboxServiceImpl) scan(ctx context.Context, queueID string, visit func(models.Metadata)) error {
	keys, err := s.store.Keys(ctx, queueID)
	if err != nil {
		return err
	}

	for _, key := range keys {
		raw, err := s.store.Read(ctx, queueID, key)
		if err != nil {
			s.logger.Printf("warning: skipping message %s in %s: %v", key, queueID, err)
			continue
		}
		visit(inmail.Extract(key, raw))
	}
	return nil
}
