package cli

import (
	"testing"

	"github.com/example/courier/internal/models"
)

func subcommandNames(t *testing.T, cmdName string) map[string]bool {
	t.Helper()
	var names map[string]bool
	switch cmdName {
	case "mail":
		names = map[string]bool{}
		for _, sub := range MailCmd().Commands() {
			names[sub.Name()] = true
		}
	case "panel":
		names = map[string]bool{}
		for _, sub := range PanelCmd().Commands() {
			names[sub.Name()] = true
		}
	case "agent":
		names = map[string]bool{}
		for _, sub := range AgentCmd().Commands() {
			names[sub.Name()] = true
		}
	}
	return names
}

func TestCommandStructure(t *testing.T) {
	tests := []struct {
		command string
		subs    []string
	}{
		{"mail", []string{"send", "search", "list", "read", "thread"}},
		{"panel", []string{"list", "show", "consensus"}},
		{"agent", []string{"run", "daemon", "pending"}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			names := subcommandNames(t, tt.command)
			for _, sub := range tt.subs {
				if !names[sub] {
					t.Errorf("%s %s not registered", tt.command, sub)
				}
			}
		})
	}
}

func TestResolveQueue(t *testing.T) {
	if got := resolveQueue(""); got != models.SharedQueue {
		t.Errorf("resolveQueue(\"\") = %q, want shared queue", got)
	}
	if got := resolveQueue("spec-reviewer-panel"); got != "panels/spec-reviewer-panel" {
		t.Errorf("resolveQueue(panel) = %q", got)
	}
}
