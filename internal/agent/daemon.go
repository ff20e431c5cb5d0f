// Package agent runs workflow roles: it finds pending messages for a role,
// spawns a fresh worker session to drain them, and optionally polls.
//
// Fresh-context model: each spawned session starts with a clean slate and a
// catch-up prompt pointing at artifacts and recent messages. No context
// accumulates across sessions, and a failed session cannot poison the next.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/example/courier/internal/config"
	"github.com/example/courier/internal/ctxutil"
	"github.com/example/courier/internal/core/query"
	"github.com/example/courier/internal/models"
	"github.com/example/courier/internal/ports/primary"
	"github.com/example/courier/internal/ports/secondary"
)

// Daemon drives one workflow role.
type Daemon struct {
	roleName string
	role     config.Role
	cfg      *config.Config
	mailbox  primary.MailboxService
	runner   secondary.SessionRunner
	logger   *log.Logger

	sessionCount int
}

// NewDaemon creates a daemon for the named role. It fails when the role is
// absent from configuration.
func NewDaemon(cfg *config.Config, roleName string, mailbox primary.MailboxService, runner secondary.SessionRunner, logger *log.Logger) (*Daemon, error) {
	role, err := cfg.Role(roleName)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Daemon{
		roleName: roleName,
		role:     role,
		cfg:      cfg,
		mailbox:  mailbox,
		runner:   runner,
		logger:   logger,
	}, nil
}

// FindPending returns the role's unprocessed messages: every configured
// event type addressed to the role within the catch-up window, oldest first
// so sessions process them in arrival order.
func (d *Daemon) FindPending(ctx context.Context) ([]models.Metadata, error) {
	window := fmt.Sprintf("%dd", d.catchupDays())

	var pending []models.Metadata
	for _, eventType := range d.role.EventTypes {
		msgs, err := d.mailbox.Search(ctx, models.SharedQueue, query.Criteria{
			EventType: eventType,
			ToRole:    d.roleName,
			Since:     window,
		})
		if err != nil {
			// A queue nobody has written to yet simply has no pending work.
			if errors.Is(err, secondary.ErrQueueNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to find pending %s messages: %w", eventType, err)
		}
		pending = append(pending, msgs...)
	}

	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].Timestamp != pending[j].Timestamp {
			return pending[i].Timestamp < pending[j].Timestamp
		}
		return pending[i].Key < pending[j].Key
	})
	return pending, nil
}

// RunOnce drains the queue then exits: find pending work, spawn one session
// to process it, and report whether new messages arrived meanwhile.
func (d *Daemon) RunOnce(ctx context.Context) (int, error) {
	pending, err := d.FindPending(ctx)
	if err != nil {
		return 1, err
	}
	if len(pending) == 0 {
		d.logger.Printf("role %s: no pending messages", d.roleName)
		return 0, nil
	}

	d.logger.Printf("role %s: %d pending message(s)", d.roleName, len(pending))
	exitCode, err := d.spawnSession(ctx)
	if err != nil {
		return exitCode, err
	}

	after, err := d.FindPending(ctx)
	if err == nil && len(after) > len(pending) {
		d.logger.Printf("role %s: %d new message(s) arrived during processing", d.roleName, len(after)-len(pending))
	}
	return exitCode, nil
}

// RunDaemon polls until ctx is cancelled. Core operations always run to
// completion; cancellation is only observed between iterations.
func (d *Daemon) RunDaemon(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Duration(d.cfg.Defaults.PollIntervalSeconds) * time.Second
	}
	d.logger.Printf("role %s: polling every %s", d.roleName, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		pending, err := d.FindPending(ctx)
		switch {
		case err != nil:
			d.logger.Printf("role %s: poll failed: %v", d.roleName, err)
		case len(pending) > 0:
			d.logger.Printf("role %s: processing %d message(s)", d.roleName, len(pending))
			if _, err := d.spawnSession(ctx); err != nil {
				d.logger.Printf("role %s: session failed: %v", d.roleName, err)
			}
		}

		select {
		case <-ctx.Done():
			d.logger.Printf("role %s: shutting down", d.roleName)
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// spawnSession runs one fresh worker session with the catch-up prompt.
func (d *Daemon) spawnSession(ctx context.Context) (int, error) {
	d.sessionCount++
	d.logger.Printf("role %s: spawning session #%d", d.roleName, d.sessionCount)

	timeout := time.Duration(d.cfg.Defaults.TimeoutSeconds) * time.Second
	sessionCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	sessionCtx = ctxutil.WithSessionID(sessionCtx, uuid.NewString())

	exitCode, err := d.runner.RunSession(sessionCtx, d.role.CLI, CatchupPrompt(d.roleName, d.role))
	if err != nil {
		return exitCode, fmt.Errorf("session #%d failed: %w", d.sessionCount, err)
	}
	d.logger.Printf("role %s: session #%d exited %d", d.roleName, d.sessionCount, exitCode)
	return exitCode, nil
}

func (d *Daemon) catchupDays() int {
	if d.role.CatchupDays > 0 {
		return d.role.CatchupDays
	}
	return 7
}
