// Package config loads the supervisor configuration: role definitions,
// panel definitions, and store settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Config errors. A referenced role or panel missing from configuration is
// fatal to the requested operation, never retried.
var (
	ErrRoleNotFound  = errors.New("role not found in configuration")
	ErrPanelNotFound = errors.New("panel not found in configuration")
)

// Store backend selectors.
const (
	StoreMaildir = "maildir"
	StoreSQLite  = "sqlite"
)

// Spawn mode selectors for worker sessions.
const (
	SpawnExec = "exec"
	SpawnTmux = "tmux"
)

// Config is the supervisor configuration.
type Config struct {
	Version     string            `json:"version,omitempty"`
	MaildirRoot string            `json:"maildir_root,omitempty"`
	Store       string            `json:"store,omitempty"`      // "maildir" (default) or "sqlite"
	SpawnMode   string            `json:"spawn_mode,omitempty"` // "exec" (default) or "tmux"
	Roles       map[string]Role   `json:"roles"`
	Panels      map[string]Panel  `json:"panels"`
	MemberCLI   map[string]string `json:"member_cli,omitempty"`
	Defaults    Defaults          `json:"defaults"`
}

// Role configures one workflow role.
type Role struct {
	CLI              string   `json:"cli"`
	EventTypes       []string `json:"event_types"`
	CatchupArtifacts []string `json:"catchup_artifacts,omitempty"`
	CatchupDays      int      `json:"catchup_days,omitempty"`
}

// Panel configures one panel. Members are ordered: the first is the primary.
type Panel struct {
	Members       []string `json:"members"`
	RoleType      string   `json:"role_type"`
	DecisionModel string   `json:"decision_model"`
}

// Defaults holds operational defaults for session spawning and polling.
type Defaults struct {
	TimeoutSeconds      int `json:"timeout,omitempty"`
	PollIntervalSeconds int `json:"poll_interval,omitempty"`
}

// LoadConfig reads the config file at path. An empty path resolves to
// .courier/config.json in dir; if that file does not exist the built-in
// default configuration is returned.
func LoadConfig(dir, path string) (*Config, error) {
	if path == "" {
		path = filepath.Join(dir, ".courier", "config.json")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// SaveConfig writes the config to .courier/config.json under dir.
func SaveConfig(dir string, cfg *Config) error {
	courierDir := filepath.Join(dir, ".courier")
	if err := os.MkdirAll(courierDir, 0o755); err != nil {
		return fmt.Errorf("failed to create .courier dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(courierDir, "config.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Role returns the named role's configuration.
func (c *Config) Role(name string) (Role, error) {
	role, ok := c.Roles[name]
	if !ok {
		return Role{}, fmt.Errorf("%w: %q", ErrRoleNotFound, name)
	}
	return role, nil
}

// Panel returns the named panel's configuration.
func (c *Config) Panel(name string) (Panel, error) {
	panel, ok := c.Panels[name]
	if !ok {
		return Panel{}, fmt.Errorf("%w: %q", ErrPanelNotFound, name)
	}
	return panel, nil
}

// PanelNames returns the configured panel names, sorted.
func (c *Config) PanelNames() []string {
	names := make([]string, 0, len(c.Panels))
	for name := range c.Panels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MemberCLICommand resolves the CLI command for a panel member acting in a
// role. Resolution order: member_cli override, then the role's own CLI when
// it targets this member, then a generic fallback.
func (c *Config) MemberCLICommand(member, roleType string) string {
	if cli, ok := c.MemberCLI[member]; ok {
		return cli
	}
	if role, ok := c.Roles[roleType]; ok && role.CLI != "" {
		return role.CLI
	}
	return fmt.Sprintf("%s --role %s", member, roleType)
}

func (c *Config) applyDefaults() {
	if c.Store == "" {
		c.Store = StoreMaildir
	}
	if c.SpawnMode == "" {
		c.SpawnMode = SpawnExec
	}
	if c.MaildirRoot == "" {
		c.MaildirRoot = defaultMaildirRoot()
	}
	if c.Defaults.TimeoutSeconds == 0 {
		c.Defaults.TimeoutSeconds = 600
	}
	if c.Defaults.PollIntervalSeconds == 0 {
		c.Defaults.PollIntervalSeconds = 60
	}
}

func defaultMaildirRoot() string {
	if root := os.Getenv("COURIER_MAILDIR"); root != "" {
		return root
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "Maildir"
	}
	return filepath.Join(home, "Maildir")
}

// DefaultConfig returns the built-in configuration used when no config file
// exists: the standard review/write roles and a three-member review panel.
func DefaultConfig() *Config {
	cfg := &Config{
		Version: "1",
		Roles: map[string]Role{
			"spec-writer": {
				CLI:         "claude --role spec-writer",
				EventTypes:  []string{"approval", "rejection", "clarification-request"},
				CatchupDays: 7,
				CatchupArtifacts: []string{
					"project-meta/planning/ROADMAP.md",
					"project-meta/specs/proposed/*.md",
				},
			},
			"spec-reviewer": {
				CLI:         "claude --role spec-reviewer",
				EventTypes:  []string{"review-request"},
				CatchupDays: 7,
				CatchupArtifacts: []string{
					"project-meta/specs/proposed/*.md",
					"project-meta/specs/doing/*.md",
				},
			},
			"implementer": {
				CLI:         "claude --role implementer",
				EventTypes:  []string{"approval", "clarification-request", "question"},
				CatchupDays: 7,
				CatchupArtifacts: []string{
					"project-meta/specs/todo/*.md",
				},
			},
		},
		Panels: map[string]Panel{
			"spec-reviewer-panel": {
				Members:       []string{"claude", "gpt-5", "gemini"},
				RoleType:      "spec-reviewer",
				DecisionModel: "unanimous",
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}
