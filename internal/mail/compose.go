package mail

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Draft holds the fields of an outgoing message. Zero-valued optional fields
// are omitted from the output.
type Draft struct {
	From      string
	To        string
	Subject   string
	EventType string
	Artifacts []string
	State     string
	SessionID string
	InReplyTo string
	Body      string
}

// Compose renders a draft as raw RFC 5322 bytes with a generated Message-ID
// and the current date. Replies carry In-Reply-To and a References header so
// thread reconstruction can follow either edge.
func Compose(d Draft, now time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "Message-ID: <%s@courier>\r\n", uuid.NewString())
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "From: %s\r\n", d.From)
	fmt.Fprintf(&b, "To: %s\r\n", d.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", d.Subject)
	if d.EventType != "" {
		fmt.Fprintf(&b, "%s: %s\r\n", HeaderEventType, d.EventType)
	}
	if len(d.Artifacts) > 0 {
		fmt.Fprintf(&b, "%s: %s\r\n", HeaderArtifacts, strings.Join(d.Artifacts, ", "))
	}
	if d.State != "" {
		fmt.Fprintf(&b, "%s: %s\r\n", HeaderState, d.State)
	}
	if d.SessionID != "" {
		fmt.Fprintf(&b, "%s: %s\r\n", HeaderSessionID, d.SessionID)
	}
	if d.InReplyTo != "" {
		fmt.Fprintf(&b, "In-Reply-To: %s\r\n", d.InReplyTo)
		fmt.Fprintf(&b, "References: %s\r\n", d.InReplyTo)
	}
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(d.Body)
	if !strings.HasSuffix(d.Body, "\n") {
		b.WriteString("\r\n")
	}
	return []byte(b.String())
}
