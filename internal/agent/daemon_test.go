package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/example/courier/internal/adapters/memory"
	"github.com/example/courier/internal/app"
	"github.com/example/courier/internal/config"
)

// fakeRunner records spawn requests without running anything.
type fakeRunner struct {
	calls      int
	lastCLI    string
	lastPrompt string
	exitCode   int
	err        error
}

func (f *fakeRunner) RunSession(ctx context.Context, cliCommand, prompt string) (int, error) {
	f.calls++
	f.lastCLI = cliCommand
	f.lastPrompt = prompt
	return f.exitCode, f.err
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	return cfg
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func seedReviewRequest(t *testing.T, store *memory.Store, to string, age time.Duration) {
	t.Helper()
	date := time.Now().Add(-age).Format(time.RFC1123Z)
	raw := fmt.Sprintf("Message-ID: <%d>\nFrom: spec-writer@w\nTo: %s@w\nSubject: review\nDate: %s\nX-Event-Type: review-request\n\nbody\n",
		time.Now().UnixNano(), to, date)
	if _, err := store.Append(context.Background(), "workflow", []byte(raw)); err != nil {
		t.Fatal(err)
	}
}

func TestNewDaemonUnknownRole(t *testing.T) {
	store := memory.NewStore()
	mailbox := app.NewMailboxService(store, nil)
	if _, err := NewDaemon(testConfig(), "nonexistent", mailbox, &fakeRunner{}, quietLogger()); !errors.Is(err, config.ErrRoleNotFound) {
		t.Errorf("NewDaemon = %v, want ErrRoleNotFound", err)
	}
}

func TestFindPendingOldestFirst(t *testing.T) {
	store := memory.NewStore()
	mailbox := app.NewMailboxService(store, nil)

	seedReviewRequest(t, store, "spec-reviewer", 1*time.Hour)
	seedReviewRequest(t, store, "spec-reviewer", 3*time.Hour)
	seedReviewRequest(t, store, "spec-reviewer", 2*time.Hour)
	// Addressed to a different role: not pending for spec-reviewer.
	seedReviewRequest(t, store, "implementer", 1*time.Hour)
	// Outside the 7 day catch-up window.
	seedReviewRequest(t, store, "spec-reviewer", 30*24*time.Hour)

	d, err := NewDaemon(testConfig(), "spec-reviewer", mailbox, &fakeRunner{}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	pending, err := d.FindPending(context.Background())
	if err != nil {
		t.Fatalf("FindPending failed: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("len = %d, want 3", len(pending))
	}
	for i := 1; i < len(pending); i++ {
		if pending[i-1].Timestamp > pending[i].Timestamp {
			t.Errorf("pending not oldest-first at %d", i)
		}
	}
}

func TestRunOnceNoPending(t *testing.T) {
	store := memory.NewStore()
	mailbox := app.NewMailboxService(store, nil)
	// Queue exists but holds nothing for this role.
	seedReviewRequest(t, store, "implementer", time.Hour)

	runner := &fakeRunner{}
	d, err := NewDaemon(testConfig(), "spec-reviewer", mailbox, runner, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	code, err := d.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if runner.calls != 0 {
		t.Errorf("runner called %d times with empty queue", runner.calls)
	}
}

func TestRunOnceSpawnsSessionWithCatchupPrompt(t *testing.T) {
	store := memory.NewStore()
	mailbox := app.NewMailboxService(store, nil)
	seedReviewRequest(t, store, "spec-reviewer", time.Hour)

	runner := &fakeRunner{}
	d, err := NewDaemon(testConfig(), "spec-reviewer", mailbox, runner, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := d.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if runner.calls != 1 {
		t.Fatalf("runner called %d times, want 1", runner.calls)
	}
	if runner.lastCLI != "claude --role spec-reviewer" {
		t.Errorf("CLI command = %q", runner.lastCLI)
	}
	if !strings.Contains(runner.lastPrompt, "spec-reviewer - Session Catch-Up") {
		t.Errorf("prompt missing catch-up header: %q", runner.lastPrompt[:80])
	}
	if !strings.Contains(runner.lastPrompt, "--event-type review-request") {
		t.Error("prompt missing role event-type search hint")
	}
}

func TestRunDaemonStopsOnCancel(t *testing.T) {
	store := memory.NewStore()
	mailbox := app.NewMailboxService(store, nil)

	d, err := NewDaemon(testConfig(), "spec-reviewer", mailbox, &fakeRunner{}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.RunDaemon(ctx, 10*time.Millisecond)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunDaemon = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RunDaemon did not observe cancellation")
	}
}

func TestCatchupPromptListsArtifacts(t *testing.T) {
	role := config.Role{
		CLI:              "claude --role spec-writer",
		EventTypes:       []string{"approval"},
		CatchupArtifacts: []string{"project-meta/planning/ROADMAP.md"},
		CatchupDays:      3,
	}

	prompt := CatchupPrompt("spec-writer", role)
	if !strings.Contains(prompt, "project-meta/planning/ROADMAP.md") {
		t.Error("prompt missing artifact")
	}
	if !strings.Contains(prompt, "last 3 days") {
		t.Error("prompt missing catch-up window")
	}
}

func TestMemberPromptNamesPanelQueue(t *testing.T) {
	prompt := MemberPrompt("claude", "spec-reviewer", "specs/auth.md", "panels/spec-reviewer-panel")
	if !strings.Contains(prompt, "panels/spec-reviewer-panel") {
		t.Error("prompt missing panel queue")
	}
	if !strings.Contains(prompt, "specs/auth.md") {
		t.Error("prompt missing artifact path")
	}
}
