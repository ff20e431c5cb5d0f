package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/example/courier/internal/config"
	"github.com/example/courier/internal/core/consensus"
	"github.com/example/courier/internal/core/query"
	"github.com/example/courier/internal/models"
	"github.com/example/courier/internal/ports/primary"
	"github.com/example/courier/internal/ports/secondary"
)

// decisionWindow bounds how far back a consensus check looks for decision
// messages in the panel queue.
const decisionWindow = "7d"

// PanelServiceImpl implements the PanelService interface.
type PanelServiceImpl struct {
	cfg     *config.Config
	mailbox primary.MailboxService
}

// NewPanelService creates a PanelService with injected dependencies.
func NewPanelService(cfg *config.Config, mailbox primary.MailboxService) *PanelServiceImpl {
	return &PanelServiceImpl{cfg: cfg, mailbox: mailbox}
}

// GetPanel resolves a configured panel, parsing its decision model. An
// unknown decision-model tag fails closed.
func (s *PanelServiceImpl) GetPanel(name string) (*consensus.Panel, error) {
	pc, err := s.cfg.Panel(name)
	if err != nil {
		return nil, err
	}

	model, err := consensus.ParseDecisionModel(pc.DecisionModel)
	if err != nil {
		return nil, fmt.Errorf("panel %q: %w", name, err)
	}

	return &consensus.Panel{
		Name:     name,
		Members:  pc.Members,
		RoleType: pc.RoleType,
		Model:    model,
	}, nil
}

// ListPanels returns all configured panels sorted by name.
func (s *PanelServiceImpl) ListPanels() ([]*consensus.Panel, error) {
	var panels []*consensus.Panel
	for _, name := range s.cfg.PanelNames() {
		panel, err := s.GetPanel(name)
		if err != nil {
			return nil, err
		}
		panels = append(panels, panel)
	}
	return panels, nil
}

// CheckConsensus searches the panel-internal queue for recent decision
// messages, reduces them to one vote per member (most recent wins), and
// applies the panel's decision model. Zero decisions yield the NoConsensus
// outcome, not an error.
func (s *PanelServiceImpl) CheckConsensus(ctx context.Context, panelName string) (*primary.ConsensusReport, error) {
	panel, err := s.GetPanel(panelName)
	if err != nil {
		return nil, err
	}

	decisions, err := s.mailbox.Search(ctx, models.PanelQueue(panelName), query.Criteria{
		EventType: models.EventPanelDecision,
		Since:     decisionWindow,
	})
	if err != nil {
		// A panel whose internal queue was never written to has no
		// decisions yet; that is NoConsensus, not a failure.
		if isQueueMissing(err) {
			decisions = nil
		} else {
			return nil, fmt.Errorf("failed to read panel queue: %w", err)
		}
	}

	votes := consensus.CollectVotes(decisions)
	result := consensus.Decide(*panel, votes)

	return &primary.ConsensusReport{
		Panel:     panelName,
		Model:     panel.Model.String(),
		Result:    result,
		Decisions: len(decisions),
	}, nil
}

// memberTallyLine formats one member's vote for display, shared by CLI
// adapters.
func memberTallyLine(member string, vote consensus.Vote, voted bool) string {
	if !voted {
		return member + ": (no vote)"
	}
	return member + ": " + string(vote)
}

// FormatTally renders the per-member tally in panel member order.
func FormatTally(panel *consensus.Panel, result consensus.Result) []string {
	lines := make([]string, 0, len(panel.Members))
	for _, member := range panel.Members {
		vote, ok := result.Votes[member]
		lines = append(lines, memberTallyLine(member, vote, ok))
	}
	if extra := len(result.Votes) - counted(panel, result); extra > 0 {
		lines = append(lines, "(+"+strconv.Itoa(extra)+" votes from senders outside the member list)")
	}
	return lines
}

func isQueueMissing(err error) bool {
	return errors.Is(err, secondary.ErrQueueNotFound)
}

func counted(panel *consensus.Panel, result consensus.Result) int {
	n := 0
	for _, member := range panel.Members {
		if _, ok := result.Votes[member]; ok {
			n++
		}
	}
	return n
}
