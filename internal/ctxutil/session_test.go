package ctxutil

import (
	"context"
	"testing"
)

func TestSessionRoundTrip(t *testing.T) {
	ctx := WithSessionID(context.Background(), "abc-123")
	if got := SessionFromContext(ctx); got != "abc-123" {
		t.Errorf("SessionFromContext = %q, want abc-123", got)
	}
}

func TestSessionMissing(t *testing.T) {
	if got := SessionFromContext(context.Background()); got != "" {
		t.Errorf("SessionFromContext = %q, want empty", got)
	}
}
