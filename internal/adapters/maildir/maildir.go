// Package maildir implements the message store port on maildir-format
// directories: one maildir per queue under a common root.
//
// Delivery is two-phase: the message is written to tmp/ and published into
// new/ with a single atomic rename, so a concurrent reader either sees the
// whole message or nothing. No lock is ever taken over the queue; many
// writers and readers may work the same maildir at once.
package maildir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/courier/internal/ports/secondary"
)

// Store implements secondary.MessageStore over a root directory of maildirs.
type Store struct {
	root string
	host string
}

var _ secondary.MessageStore = (*Store)(nil)

// NewStore creates a maildir store rooted at the given directory. The root
// itself is created lazily on first append.
func NewStore(root string) *Store {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	// Keys must survive as single path segments.
	host = strings.NewReplacer("/", "_", ":", "_").Replace(host)
	return &Store{root: root, host: host}
}

// Append writes the message to tmp/ and publishes it into new/ via rename.
func (s *Store) Append(ctx context.Context, queueID string, raw []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := s.queueDir(queueID)
	for _, sub := range []string{"tmp", "new", "cur"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return "", fmt.Errorf("%w: creating %s: %v", secondary.ErrStorage, queueID, err)
		}
	}

	key := s.newKey()
	tmpPath := filepath.Join(dir, "tmp", key)
	newPath := filepath.Join(dir, "new", key)

	if err := os.WriteFile(tmpPath, raw, 0o644); err != nil {
		return "", fmt.Errorf("%w: staging message in %s: %v", secondary.ErrStorage, queueID, err)
	}
	if err := os.Rename(tmpPath, newPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: publishing message in %s: %v", secondary.ErrStorage, queueID, err)
	}

	return key, nil
}

// Keys lists messages in new/ and cur/. Filenames in cur/ may carry an info
// suffix (":2,<flags>"); the key is the part before it.
func (s *Store) Keys(ctx context.Context, queueID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := s.queueDir(queueID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", secondary.ErrQueueNotFound, queueID)
	}

	var keys []string
	for _, sub := range []string{"new", "cur"} {
		entries, err := os.ReadDir(filepath.Join(dir, sub))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("%w: listing %s/%s: %v", secondary.ErrStorage, queueID, sub, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			keys = append(keys, keyFromFilename(e.Name()))
		}
	}
	return keys, nil
}

// Read returns the raw bytes of one message, looking in new/ then cur/.
func (s *Store) Read(ctx context.Context, queueID, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := s.queueDir(queueID)
	for _, sub := range []string{"new", "cur"} {
		path := filepath.Join(dir, sub, key)
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: reading %s in %s: %v", secondary.ErrStorage, key, queueID, err)
		}
		// cur/ entries carry flag suffixes; match on the key prefix.
		if matches, _ := filepath.Glob(path + ":*"); len(matches) > 0 {
			data, err := os.ReadFile(matches[0])
			if err != nil {
				return nil, fmt.Errorf("%w: reading %s in %s: %v", secondary.ErrStorage, key, queueID, err)
			}
			return data, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", secondary.ErrMessageNotFound, key, queueID)
}

func (s *Store) queueDir(queueID string) string {
	return filepath.Join(s.root, filepath.FromSlash(queueID))
}

// newKey builds a maildir-style unique name from high-resolution time, the
// writer's process identity, random entropy, and the host name. Two
// concurrent appends can never collide: even within one nanosecond on one
// host the UUID component differs.
func (s *Store) newKey() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d.P%dR%s.%s", time.Now().UnixNano(), os.Getpid(), id, s.host)
}

func keyFromFilename(name string) string {
	if i := strings.Index(name, ":"); i >= 0 {
		return name[:i]
	}
	return name
}
