package mail

import (
	"strings"
	"testing"
	"time"
)

func TestComposeRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	raw := Compose(Draft{
		From:      "spec-writer@workflow",
		To:        "spec-reviewer@workflow",
		Subject:   "Review request: auth spec",
		EventType: "review-request",
		Artifacts: []string{"specs/auth.md", "specs/session.md"},
		State:     "awaiting-review",
		InReplyTo: "<earlier@courier>",
		Body:      "Please review.",
	}, now)

	m := Extract("k1", raw)
	if m.From != "spec-writer@workflow" || m.To != "spec-reviewer@workflow" {
		t.Errorf("addresses = %q -> %q", m.From, m.To)
	}
	if m.EventType != "review-request" || m.State != "awaiting-review" {
		t.Errorf("workflow headers = %q, %q", m.EventType, m.State)
	}
	if len(m.Artifacts) != 2 || m.Artifacts[0] != "specs/auth.md" {
		t.Errorf("artifacts = %v", m.Artifacts)
	}
	if m.InReplyTo != "<earlier@courier>" {
		t.Errorf("in-reply-to = %q", m.InReplyTo)
	}
	if len(m.References) != 1 || m.References[0] != "<earlier@courier>" {
		t.Errorf("references = %v", m.References)
	}
	if m.Timestamp != now.Unix() {
		t.Errorf("timestamp = %d, want %d", m.Timestamp, now.Unix())
	}
	if got := Body(raw); got != "Please review.\r\n" && got != "Please review." {
		t.Errorf("body = %q", got)
	}
	if m.MessageID == "" || !strings.HasSuffix(m.MessageID, "@courier>") {
		t.Errorf("message-id = %q", m.MessageID)
	}
}

func TestComposeUniqueMessageIDs(t *testing.T) {
	now := time.Now()
	a := Extract("a", Compose(Draft{From: "x", To: "y", Subject: "s"}, now))
	b := Extract("b", Compose(Draft{From: "x", To: "y", Subject: "s"}, now))
	if a.MessageID == b.MessageID {
		t.Errorf("duplicate message-id %q", a.MessageID)
	}
}

func TestComposeOmitsEmptyOptionalHeaders(t *testing.T) {
	raw := string(Compose(Draft{From: "x", To: "y", Subject: "s", Body: "b"}, time.Now()))
	for _, header := range []string{HeaderEventType, HeaderArtifacts, HeaderState, "In-Reply-To"} {
		if strings.Contains(raw, header) {
			t.Errorf("empty %s header emitted", header)
		}
	}
}
