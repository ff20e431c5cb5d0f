package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/example/courier/internal/adapters/memory"
	"github.com/example/courier/internal/config"
	"github.com/example/courier/internal/core/consensus"
	"github.com/example/courier/internal/models"
)

func panelFixture(t *testing.T) (*PanelServiceImpl, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	mailbox := NewMailboxService(store, nil)
	return NewPanelService(config.DefaultConfig(), mailbox), store
}

func seedDecision(t *testing.T, store *memory.Store, panel, member, subject string, at time.Time) {
	t.Helper()
	raw := fmt.Sprintf("Message-ID: <%s-%d>\nFrom: %s@workflow\nTo: panel@workflow\nSubject: %s\nDate: %s\nX-Event-Type: panel-decision\n\nassessment\n",
		member, at.UnixNano(), member, subject, at.Format(time.RFC1123Z))
	if _, err := store.Append(context.Background(), models.PanelQueue(panel), []byte(raw)); err != nil {
		t.Fatal(err)
	}
}

func TestGetPanelResolvesModel(t *testing.T) {
	svc, _ := panelFixture(t)

	panel, err := svc.GetPanel("spec-reviewer-panel")
	if err != nil {
		t.Fatalf("GetPanel failed: %v", err)
	}
	if panel.Model != consensus.Unanimous {
		t.Errorf("model = %v, want Unanimous", panel.Model)
	}
	if panel.Primary() != "claude" {
		t.Errorf("primary = %q, want claude", panel.Primary())
	}
}

func TestGetPanelUnknownName(t *testing.T) {
	svc, _ := panelFixture(t)
	if _, err := svc.GetPanel("no-such-panel"); !errors.Is(err, config.ErrPanelNotFound) {
		t.Errorf("GetPanel = %v, want ErrPanelNotFound", err)
	}
}

func TestGetPanelBadDecisionModelFailsClosed(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Panels["broken"] = config.Panel{
		Members:       []string{"claude"},
		RoleType:      "spec-reviewer",
		DecisionModel: "quorum-of-elders",
	}
	store := memory.NewStore()
	svc := NewPanelService(cfg, NewMailboxService(store, nil))

	if _, err := svc.GetPanel("broken"); !errors.Is(err, consensus.ErrUnknownDecisionModel) {
		t.Errorf("GetPanel = %v, want ErrUnknownDecisionModel", err)
	}
}

func TestListPanelsSorted(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Panels["arch-panel"] = config.Panel{
		Members:       []string{"claude", "gpt-5"},
		RoleType:      "architect",
		DecisionModel: "majority",
	}
	store := memory.NewStore()
	svc := NewPanelService(cfg, NewMailboxService(store, nil))

	panels, err := svc.ListPanels()
	if err != nil {
		t.Fatalf("ListPanels failed: %v", err)
	}
	if len(panels) != 2 {
		t.Fatalf("len = %d, want 2", len(panels))
	}
	if panels[0].Name != "arch-panel" || panels[1].Name != "spec-reviewer-panel" {
		t.Errorf("order = %q, %q", panels[0].Name, panels[1].Name)
	}
}

func TestCheckConsensusEmptyQueueIsNoConsensus(t *testing.T) {
	svc, _ := panelFixture(t)

	report, err := svc.CheckConsensus(context.Background(), "spec-reviewer-panel")
	if err != nil {
		t.Fatalf("CheckConsensus failed: %v", err)
	}
	if report.Result.Reached {
		t.Error("reached consensus with no decision messages")
	}
	if report.Decisions != 0 {
		t.Errorf("decisions = %d, want 0", report.Decisions)
	}
}

func TestCheckConsensusUnanimousApproval(t *testing.T) {
	svc, store := panelFixture(t)
	now := time.Now()
	seedDecision(t, store, "spec-reviewer-panel", "claude", "Assessment: approve", now.Add(-3*time.Hour))
	seedDecision(t, store, "spec-reviewer-panel", "gpt-5", "I approve this spec", now.Add(-2*time.Hour))
	seedDecision(t, store, "spec-reviewer-panel", "gemini", "approve with minor notes", now.Add(-1*time.Hour))

	report, err := svc.CheckConsensus(context.Background(), "spec-reviewer-panel")
	if err != nil {
		t.Fatalf("CheckConsensus failed: %v", err)
	}
	if !report.Result.Reached || report.Result.Verdict != consensus.Approve {
		t.Errorf("result = %+v, want unanimous approve", report.Result)
	}
	if report.Decisions != 3 {
		t.Errorf("decisions = %d, want 3", report.Decisions)
	}
}

func TestCheckConsensusMostRecentVoteWins(t *testing.T) {
	svc, store := panelFixture(t)
	now := time.Now()
	seedDecision(t, store, "spec-reviewer-panel", "claude", "reject: missing error cases", now.Add(-4*time.Hour))
	seedDecision(t, store, "spec-reviewer-panel", "claude", "revised draft looks good, approve", now.Add(-1*time.Hour))
	seedDecision(t, store, "spec-reviewer-panel", "gpt-5", "approve", now.Add(-2*time.Hour))
	seedDecision(t, store, "spec-reviewer-panel", "gemini", "approve", now.Add(-2*time.Hour))

	report, err := svc.CheckConsensus(context.Background(), "spec-reviewer-panel")
	if err != nil {
		t.Fatalf("CheckConsensus failed: %v", err)
	}
	if !report.Result.Reached || report.Result.Verdict != consensus.Approve {
		t.Errorf("result = %+v, want approve after vote change", report.Result)
	}
	if got := report.Result.Votes["claude"]; got != consensus.Approve {
		t.Errorf("claude vote = %q, want most recent (approve)", got)
	}
}

func TestCheckConsensusStaleDecisionsIgnored(t *testing.T) {
	svc, store := panelFixture(t)
	now := time.Now()
	// Older than the decision window: a finished round must not bleed into
	// the next one.
	seedDecision(t, store, "spec-reviewer-panel", "claude", "approve", now.Add(-30*24*time.Hour))
	seedDecision(t, store, "spec-reviewer-panel", "gpt-5", "approve", now.Add(-30*24*time.Hour))
	seedDecision(t, store, "spec-reviewer-panel", "gemini", "approve", now.Add(-30*24*time.Hour))

	report, err := svc.CheckConsensus(context.Background(), "spec-reviewer-panel")
	if err != nil {
		t.Fatalf("CheckConsensus failed: %v", err)
	}
	if report.Result.Reached {
		t.Error("stale decisions produced consensus")
	}
	if report.Decisions != 0 {
		t.Errorf("decisions = %d, want 0", report.Decisions)
	}
}

func TestCheckConsensusUnanimousBlockedByOneReject(t *testing.T) {
	svc, store := panelFixture(t)
	now := time.Now()
	seedDecision(t, store, "spec-reviewer-panel", "claude", "approve", now.Add(-3*time.Hour))
	seedDecision(t, store, "spec-reviewer-panel", "gpt-5", "approve", now.Add(-2*time.Hour))
	seedDecision(t, store, "spec-reviewer-panel", "gemini", "reject: section 4 contradicts section 2", now.Add(-1*time.Hour))

	report, err := svc.CheckConsensus(context.Background(), "spec-reviewer-panel")
	if err != nil {
		t.Fatalf("CheckConsensus failed: %v", err)
	}
	if report.Result.Reached {
		t.Errorf("result = %+v, want no consensus under unanimous model", report.Result)
	}
}

func TestCheckConsensusUnknownPanel(t *testing.T) {
	svc, _ := panelFixture(t)
	if _, err := svc.CheckConsensus(context.Background(), "ghost-panel"); !errors.Is(err, config.ErrPanelNotFound) {
		t.Errorf("CheckConsensus = %v, want ErrPanelNotFound", err)
	}
}

func TestFormatTallyShowsMissingVotes(t *testing.T) {
	panel := &consensus.Panel{
		Name:    "p",
		Members: []string{"claude", "gpt-5", "gemini"},
		Model:   consensus.Unanimous,
	}
	result := consensus.Result{
		Votes: map[string]consensus.Vote{
			"claude": consensus.Approve,
			"gemini": consensus.RequestRevision,
		},
	}

	lines := FormatTally(panel, result)
	if len(lines) != 3 {
		t.Fatalf("len = %d, want 3", len(lines))
	}
	if lines[0] != "claude: approve" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "(no vote)") {
		t.Errorf("line 1 = %q, want no-vote marker", lines[1])
	}
	if lines[2] != "gemini: request-revision" {
		t.Errorf("line 2 = %q", lines[2])
	}
}
