package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/courier/internal/agent"
	"github.com/example/courier/internal/wire"
)

// AgentCmd returns the agent command
func AgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Run role worker sessions",
		Long: `Run a role either once or as a polling daemon.

The daemon finds messages addressed to the role, spawns a fresh worker
session with a catch-up prompt, and waits for it to drain the queue.
Worker sessions carry no memory between spawns; all state lives in
artifacts and mail.`,
	}

	cmd.AddCommand(agentRunCmd())
	cmd.AddCommand(agentDaemonCmd())
	cmd.AddCommand(agentPendingCmd())

	return cmd
}

func agentRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <role>",
		Short: "Process pending messages once and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := agent.NewDaemon(wire.Config(), args[0], wire.MailboxService(), wire.SessionRunner(), wire.Logger())
			if err != nil {
				return err
			}

			exitCode, err := d.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			if exitCode != 0 {
				return fmt.Errorf("worker session exited %d", exitCode)
			}
			return nil
		},
	}

	return cmd
}

func agentDaemonCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "daemon <role>",
		Short: "Poll for pending messages until interrupted",
		Long: `Poll the shared queue on an interval, spawning a worker session
whenever pending messages exist. SIGINT or SIGTERM stops the loop after
the current session finishes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := agent.NewDaemon(wire.Config(), args[0], wire.MailboxService(), wire.SessionRunner(), wire.Logger())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := d.RunDaemon(ctx, interval); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Poll interval (default from config)")
	return cmd
}

func agentPendingCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "pending <role>",
		Short: "List a role's pending messages without spawning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := agent.NewDaemon(wire.Config(), args[0], wire.MailboxService(), wire.SessionRunner(), wire.Logger())
			if err != nil {
				return err
			}

			pending, err := d.FindPending(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(pending)
			}
			if len(pending) == 0 {
				fmt.Printf("%s No pending messages for %s\n", color.GreenString("✓"), args[0])
				return nil
			}
			printMetadataList(pending)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print pending metadata as JSON")
	return cmd
}
