// Package sqlite implements the message store port on SQLite. It is the
// alternative durable backend: same append-only, immutable-record contract
// as the maildir store, behind the same narrow interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/courier/internal/ports/secondary"
)

// Store implements secondary.MessageStore with a SQLite database.
type Store struct {
	db   *sql.DB
	host string
}

var _ secondary.MessageStore = (*Store)(nil)

// NewStore creates a SQLite message store over an open connection.
func NewStore(db *sql.DB) *Store {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	host = strings.NewReplacer("/", "_", ":", "_").Replace(host)
	return &Store{db: db, host: host}
}

// Append inserts the message, registering the queue on first use. The insert
// is a single transaction: readers never see a partial record.
func (s *Store) Append(ctx context.Context, queueID string, raw []byte) (string, error) {
	key := fmt.Sprintf("%d.P%dR%s.%s",
		time.Now().UnixNano(), os.Getpid(),
		strings.ReplaceAll(uuid.NewString(), "-", "")[:12], s.host)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: begin append to %s: %v", secondary.ErrStorage, queueID, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO queues (queue_id) VALUES (?)", queueID); err != nil {
		return "", fmt.Errorf("%w: registering queue %s: %v", secondary.ErrStorage, queueID, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO messages (queue_id, key, raw) VALUES (?, ?, ?)", queueID, key, raw); err != nil {
		return "", fmt.Errorf("%w: appending to %s: %v", secondary.ErrStorage, queueID, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%w: committing append to %s: %v", secondary.ErrStorage, queueID, err)
	}

	return key, nil
}

// Keys lists the keys stored in the queue.
func (s *Store) Keys(ctx context.Context, queueID string) ([]string, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM queues WHERE queue_id = ?", queueID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: checking queue %s: %v", secondary.ErrStorage, queueID, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", secondary.ErrQueueNotFound, queueID)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT key FROM messages WHERE queue_id = ? ORDER BY key", queueID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", secondary.ErrStorage, queueID, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%w: scanning key in %s: %v", secondary.ErrStorage, queueID, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", secondary.ErrStorage, queueID, err)
	}
	return keys, nil
}

// Read returns the raw bytes of one stored message.
func (s *Store) Read(ctx context.Context, queueID, key string) ([]byte, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT raw FROM messages WHERE queue_id = ? AND key = ?", queueID, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s in %s", secondary.ErrMessageNotFound, key, queueID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s in %s: %v", secondary.ErrStorage, key, queueID, err)
	}
	return raw, nil
}
