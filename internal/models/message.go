package models

// Metadata is the canonical per-message metadata record extracted from a
// stored message. It is immutable once extracted: every field is a pure
// function of the raw message bytes plus the store key.
type Metadata struct {
	Key        string   `json:"key"`
	MessageID  string   `json:"message_id"`
	From       string   `json:"from"`
	To         string   `json:"to"`
	Subject    string   `json:"subject"`
	Date       string   `json:"date"`
	Timestamp  int64    `json:"timestamp"`
	EventType  string   `json:"event_type"`
	Artifacts  []string `json:"artifacts"`
	State      string   `json:"workflow_state"`
	SessionID  string   `json:"session_id"`
	InReplyTo  string   `json:"in_reply_to"`
	References []string `json:"references"`
}

// FullMessage is a message with its headers and decoded body, returned by an
// explicit single-message read. Search and thread operations never load it.
type FullMessage struct {
	Metadata `json:"metadata"`
	Headers  map[string][]string `json:"headers"`
	Body     string              `json:"body"`
}

// Event type constants for workflow messages.
const (
	EventReviewRequest        = "review-request"
	EventApproval             = "approval"
	EventRejection            = "rejection"
	EventClarificationRequest = "clarification-request"
	EventPanelDecision        = "panel-decision"
)

// Queue naming. The shared queue is visible to all roles; each panel owns an
// isolated queue that cross-panel queries never touch.
const (
	SharedQueue      = "workflow"
	panelQueuePrefix = "panels/"
)

// PanelQueue returns the namespaced queue ID for a panel's internal mailbox.
func PanelQueue(panelName string) string {
	return panelQueuePrefix + panelName
}
