// Package runner implements the session-runner port: spawning worker CLI
// sessions either as child processes or inside tmux sessions.
package runner

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/example/courier/internal/ctxutil"
	"github.com/example/courier/internal/ports/secondary"
)

// timeoutExitCode mirrors the shell convention for killed-by-timeout.
const timeoutExitCode = 124

// ExecRunner runs a session as a child process, feeding the prompt on stdin
// and waiting for it to exit.
type ExecRunner struct {
	// Dir is the working directory for spawned sessions; empty means the
	// current directory.
	Dir string
}

var _ secondary.SessionRunner = (*ExecRunner)(nil)

// RunSession runs the CLI command with the prompt on stdin and returns its
// exit code. The context bounds the whole session: on expiry the process is
// killed and the timeout exit code returned.
func (r *ExecRunner) RunSession(ctx context.Context, cliCommand, prompt string) (int, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", cliCommand)
	cmd.Stdin = strings.NewReader(prompt)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Dir = r.Dir
	cmd.Env = sessionEnv(ctx)

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	if ctx.Err() != nil {
		return timeoutExitCode, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Non-zero exit is the session's own verdict, not a spawn failure.
		return exitErr.ExitCode(), nil
	}
	return 1, err
}

// sessionEnv exports the current session ID to the worker so mail it sends
// can be stamped with the session that produced it.
func sessionEnv(ctx context.Context) []string {
	env := os.Environ()
	if id := ctxutil.SessionFromContext(ctx); id != "" {
		env = append(env, "COURIER_SESSION_ID="+id)
	}
	return env
}
