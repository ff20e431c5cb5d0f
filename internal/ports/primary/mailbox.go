// Package primary defines the primary ports (driving interfaces) for the
// application: what the CLI and daemon may ask of the core.
package primary

import (
	"context"

	"github.com/example/courier/internal/core/consensus"
	"github.com/example/courier/internal/core/query"
	"github.com/example/courier/internal/models"
)

// MailboxService defines the primary port for mailbox operations.
type MailboxService interface {
	// Send appends a raw RFC 5322 message to the queue and returns its key.
	Send(ctx context.Context, queueID string, raw []byte) (string, error)

	// Search scans the queue and returns metadata records matching the
	// criteria, most recent first. Bodies are never loaded.
	Search(ctx context.Context, queueID string, criteria query.Criteria) ([]models.Metadata, error)

	// ReadMessage loads one message in full: headers, metadata, and the
	// decoded plain-text body.
	ReadMessage(ctx context.Context, queueID, key string) (*models.FullMessage, error)

	// Thread returns the transitive closure of messages connected to the
	// given message ID, oldest first.
	Thread(ctx context.Context, queueID, messageID string) ([]models.Metadata, error)
}

// PanelService defines the primary port for panel operations.
type PanelService interface {
	// GetPanel resolves a configured panel by name.
	GetPanel(name string) (*consensus.Panel, error)

	// ListPanels returns all configured panels sorted by name.
	ListPanels() ([]*consensus.Panel, error)

	// CheckConsensus evaluates the panel's decision messages under its
	// decision model. An unresolved outcome is a normal result, not an
	// error.
	CheckConsensus(ctx context.Context, panelName string) (*ConsensusReport, error)
}

// ConsensusReport is the outcome of a consensus check at the port boundary.
type ConsensusReport struct {
	Panel  string
	Model  string
	Result consensus.Result
	// Decisions is the number of decision-tagged messages examined.
	Decisions int
}
