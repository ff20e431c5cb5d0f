// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// SessionKey is the context key for the worker session ID.
// Exported so it can be used consistently across packages.
type SessionKey struct{}

// WithSessionID returns a context with the session ID embedded. The daemon
// sets it per spawn; runners export it to the worker process so outgoing
// mail can be stamped with the session that produced it.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionKey{}, sessionID)
}

// SessionFromContext returns the session ID from context, or empty string if not set.
func SessionFromContext(ctx context.Context) string {
	if v := ctx.Value(SessionKey{}); v != nil {
		return v.(string)
	}
	return ""
}
