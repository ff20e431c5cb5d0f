package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir(), "")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Store != StoreMaildir {
		t.Errorf("Store = %q, want maildir default", cfg.Store)
	}
	if _, err := cfg.Role("spec-reviewer"); err != nil {
		t.Errorf("default config missing spec-reviewer: %v", err)
	}
	if cfg.Defaults.TimeoutSeconds != 600 {
		t.Errorf("TimeoutSeconds = %d, want 600", cfg.Defaults.TimeoutSeconds)
	}
}

func TestLoadConfigExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "supervisor.json")
	content := `{
  "maildir_root": "/var/mail/agents",
  "store": "sqlite",
  "roles": {
    "reviewer": {"cli": "claude --role reviewer", "event_types": ["review-request"], "catchup_days": 3}
  },
  "panels": {
    "vision-panel": {"members": ["gemini", "claude"], "role_type": "reviewer", "decision_model": "majority"}
  },
  "member_cli": {"gemini": "gemini --fresh"}
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir, path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MaildirRoot != "/var/mail/agents" {
		t.Errorf("MaildirRoot = %q", cfg.MaildirRoot)
	}
	if cfg.Store != StoreSQLite {
		t.Errorf("Store = %q, want sqlite", cfg.Store)
	}

	panel, err := cfg.Panel("vision-panel")
	if err != nil {
		t.Fatal(err)
	}
	if len(panel.Members) != 2 || panel.Members[0] != "gemini" {
		t.Errorf("Members = %v", panel.Members)
	}
	if panel.DecisionModel != "majority" {
		t.Errorf("DecisionModel = %q", panel.DecisionModel)
	}
}

func TestRoleAndPanelNotFound(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := cfg.Role("no-such-role"); !errors.Is(err, ErrRoleNotFound) {
		t.Errorf("Role = %v, want ErrRoleNotFound", err)
	}
	if _, err := cfg.Panel("no-such-panel"); !errors.Is(err, ErrPanelNotFound) {
		t.Errorf("Panel = %v, want ErrPanelNotFound", err)
	}
}

func TestMemberCLICommandResolution(t *testing.T) {
	cfg := &Config{
		Roles: map[string]Role{
			"spec-reviewer": {CLI: "claude --role spec-reviewer"},
		},
		MemberCLI: map[string]string{
			"gpt-5": "gpt --model gpt-5",
		},
	}

	tests := []struct {
		member, roleType, want string
	}{
		{"gpt-5", "spec-reviewer", "gpt --model gpt-5"},
		{"claude", "spec-reviewer", "claude --role spec-reviewer"},
		{"gemini", "unknown-role", "gemini --role unknown-role"},
	}
	for _, tt := range tests {
		t.Run(tt.member, func(t *testing.T) {
			if got := cfg.MemberCLICommand(tt.member, tt.roleType); got != tt.want {
				t.Errorf("MemberCLICommand = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Store = StoreSQLite

	if err := SaveConfig(dir, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(dir, "")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Store != StoreSQLite {
		t.Errorf("Store = %q after reload", loaded.Store)
	}
	if len(loaded.PanelNames()) != 1 {
		t.Errorf("PanelNames = %v", loaded.PanelNames())
	}
}
