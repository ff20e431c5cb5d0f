package runner

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/GianlucaP106/gotmux/gotmux"

	"github.com/example/courier/internal/ctxutil"
	"github.com/example/courier/internal/ports/secondary"
)

// TmuxRunner spawns each worker session in its own detached tmux session so
// an operator can attach and watch or intervene. Sessions are
// fire-and-forget: RunSession returns once the session is created.
type TmuxRunner struct {
	tmux *gotmux.Tmux
}

var _ secondary.SessionRunner = (*TmuxRunner)(nil)

// NewTmuxRunner creates a tmux-backed session runner.
func NewTmuxRunner() (*TmuxRunner, error) {
	tmux, err := gotmux.DefaultTmux()
	if err != nil {
		return nil, fmt.Errorf("failed to create tmux client: %w", err)
	}
	return &TmuxRunner{tmux: tmux}, nil
}

// escapeShellCommand works around a gotmux quoting bug where ShellCommand is
// wrapped in single quotes, making multi-word commands a single token.
// Replacing spaces with ' ' (close-quote, space, open-quote) yields separate
// correctly quoted words.
func escapeShellCommand(cmd string) string {
	return strings.ReplaceAll(cmd, " ", "' '")
}

// RunSession writes the prompt to a temp file and starts a detached tmux
// session running the CLI with that file on stdin. The exit code of the
// worker is not observable from here; 0 means the session was launched.
func (r *TmuxRunner) RunSession(ctx context.Context, cliCommand, prompt string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 1, err
	}

	promptFile, err := os.CreateTemp("", "courier-prompt-*.md")
	if err != nil {
		return 1, fmt.Errorf("failed to write prompt file: %w", err)
	}
	if _, err := promptFile.WriteString(prompt); err != nil {
		promptFile.Close()
		os.Remove(promptFile.Name())
		return 1, fmt.Errorf("failed to write prompt file: %w", err)
	}
	promptFile.Close()

	name := fmt.Sprintf("courier-%d", time.Now().Unix())
	shellCmd := fmt.Sprintf("%s < %s", cliCommand, promptFile.Name())
	if id := ctxutil.SessionFromContext(ctx); id != "" {
		shellCmd = fmt.Sprintf("COURIER_SESSION_ID=%s %s", id, shellCmd)
	}

	_, err = r.tmux.NewSession(&gotmux.SessionOptions{
		Name:         name,
		ShellCommand: escapeShellCommand(shellCmd),
	})
	if err != nil {
		os.Remove(promptFile.Name())
		return 1, fmt.Errorf("failed to create tmux session: %w", err)
	}

	return 0, nil
}
