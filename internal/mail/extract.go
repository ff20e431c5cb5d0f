// Package mail parses stored messages into metadata records.
// Extraction is a pure function and never fails: malformed input degrades to
// zero values instead of errors so one bad message cannot poison a scan.
package mail

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/example/courier/internal/models"
)

// Workflow-specific headers carried alongside the standard RFC 5322 set.
const (
	HeaderEventType = "X-Event-Type"
	HeaderArtifacts = "X-Artifacts"
	HeaderState     = "X-Workflow-State"
	HeaderSessionID = "X-Session-Id"
)

// Extract builds a Metadata record from raw message bytes. Only headers are
// read; the body is left untouched so scan cost stays independent of message
// size. A message that cannot be parsed at all yields a record carrying just
// the key.
func Extract(key string, raw []byte) models.Metadata {
	m := models.Metadata{Key: key, Artifacts: []string{}, References: []string{}}

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return m
	}
	h := msg.Header

	m.MessageID = strings.TrimSpace(h.Get("Message-ID"))
	m.From = strings.TrimSpace(h.Get("From"))
	m.To = strings.TrimSpace(h.Get("To"))
	m.Subject = strings.TrimSpace(h.Get("Subject"))
	m.Date = strings.TrimSpace(h.Get("Date"))
	m.EventType = strings.TrimSpace(h.Get(HeaderEventType))
	m.State = strings.TrimSpace(h.Get(HeaderState))
	m.SessionID = strings.TrimSpace(h.Get(HeaderSessionID))
	m.InReplyTo = strings.TrimSpace(h.Get("In-Reply-To"))
	m.Artifacts = splitArtifacts(h.Get(HeaderArtifacts))
	m.References = strings.Fields(h.Get("References"))

	// Timestamp is a pure function of the Date header: the same string
	// always maps to the same epoch value, unparsable dates map to 0.
	if t, err := mail.ParseDate(m.Date); err == nil {
		m.Timestamp = t.Unix()
	}

	return m
}

// Body returns the plain-text body of a message. For multipart messages the
// first text/plain part wins; if none exists the body is empty. Undecodable
// bytes are replaced with U+FFFD, never surfaced as an error.
func Body(raw []byte) string {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return ""
	}

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err == nil && strings.HasPrefix(mediaType, "multipart/") {
		return firstTextPart(msg.Body, params["boundary"])
	}

	return decodePayload(msg.Body, msg.Header.Get("Content-Transfer-Encoding"))
}

// firstTextPart walks multipart content for the first text/plain part,
// recursing into nested multiparts.
func firstTextPart(body io.Reader, boundary string) string {
	if boundary == "" {
		return ""
	}
	mr := multipart.NewReader(body, boundary)
	for {
		part, err := mr.NextPart()
		if err != nil {
			return ""
		}
		mediaType, params, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if err != nil || mediaType == "" || mediaType == "text/plain" {
			return decodePayload(part, part.Header.Get("Content-Transfer-Encoding"))
		}
		if strings.HasPrefix(mediaType, "multipart/") {
			if s := firstTextPart(part, params["boundary"]); s != "" {
				return s
			}
		}
	}
}

// decodePayload applies the content-transfer-encoding and sanitizes the
// result to valid UTF-8.
func decodePayload(r io.Reader, encoding string) string {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	}
	data, _ := io.ReadAll(r)
	return strings.ToValidUTF8(string(data), "�")
}

func splitArtifacts(header string) []string {
	artifacts := []string{}
	for _, a := range strings.Split(header, ",") {
		if a = strings.TrimSpace(a); a != "" {
			artifacts = append(artifacts, a)
		}
	}
	return artifacts
}
