package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/courier/internal/core/query"
	"github.com/example/courier/internal/mail"
	"github.com/example/courier/internal/models"
	"github.com/example/courier/internal/wire"
)

// MailCmd returns the mail command
func MailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail",
		Short: "Inter-agent mail queues",
		Long: `Send, search, and read messages in the shared workflow queue.

Messages are plain RFC 5322 files in a maildir; delivery is a search away,
never a push. Use --panel to target a panel-internal queue instead of the
shared one.`,
	}

	cmd.AddCommand(mailSendCmd())
	cmd.AddCommand(mailSearchCmd())
	cmd.AddCommand(mailListCmd())
	cmd.AddCommand(mailReadCmd())
	cmd.AddCommand(mailThreadCmd())

	return cmd
}

// queueFlag adds the shared --panel selector and resolves it to a queue ID.
func queueFlag(cmd *cobra.Command, panel *string) {
	cmd.Flags().StringVar(panel, "panel", "", "Target a panel-internal queue instead of the shared one")
}

func resolveQueue(panel string) string {
	if panel != "" {
		return models.PanelQueue(panel)
	}
	return models.SharedQueue
}

func mailSendCmd() *cobra.Command {
	var from, to, subject, eventType, state, inReplyTo, panel string
	var artifacts []string

	cmd := &cobra.Command{
		Use:   "send [body]",
		Short: "Send a message",
		Long: `Append a message to a queue. The body is the positional argument,
or stdin when omitted.

Examples:
  courier mail send "Please review the auth spec" \
    --from spec-writer --to spec-reviewer \
    --subject "Review request" --event-type review-request \
    --artifact specs/auth.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := bodyFromArgsOrStdin(args)
			if err != nil {
				return err
			}
			if from == "" || to == "" {
				return fmt.Errorf("--from and --to are required")
			}
			if subject == "" {
				subject = "(no subject)"
			}

			raw := mail.Compose(mail.Draft{
				From:      from,
				To:        to,
				Subject:   subject,
				EventType: eventType,
				Artifacts: artifacts,
				State:     state,
				// Workers spawned by the daemon inherit their session ID
				// through the environment.
				SessionID: os.Getenv("COURIER_SESSION_ID"),
				InReplyTo: inReplyTo,
				Body:      body,
			}, time.Now())

			key, err := wire.MailboxService().Send(cmd.Context(), resolveQueue(panel), raw)
			if err != nil {
				return fmt.Errorf("failed to send message: %w", err)
			}

			fmt.Printf("%s Message sent: %s\n", color.GreenString("✓"), key)
			fmt.Printf("  From: %s\n", from)
			fmt.Printf("  To: %s\n", to)
			fmt.Printf("  Subject: %s\n", subject)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Sender role or member name")
	cmd.Flags().StringVar(&to, "to", "", "Recipient role or member name")
	cmd.Flags().StringVar(&subject, "subject", "", "Message subject")
	cmd.Flags().StringVar(&eventType, "event-type", "", "Workflow event type (e.g. review-request)")
	cmd.Flags().StringArrayVar(&artifacts, "artifact", nil, "Artifact path the message refers to (repeatable)")
	cmd.Flags().StringVar(&state, "state", "", "Workflow state tag")
	cmd.Flags().StringVar(&inReplyTo, "in-reply-to", "", "Message-ID this replies to")
	queueFlag(cmd, &panel)

	return cmd
}

func mailSearchCmd() *cobra.Command {
	var eventType, artifact, since, state, fromRole, toRole, panel string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search messages by metadata",
		Long: `Scan a queue and print metadata for messages matching all given
filters, most recent first. Bodies are never loaded.

Examples:
  courier mail search --event-type review-request --to spec-reviewer --since 7d
  courier mail search --artifact specs/auth.md --since 2026-01-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := wire.MailboxService().Search(cmd.Context(), resolveQueue(panel), query.Criteria{
				EventType: eventType,
				Artifact:  artifact,
				Since:     since,
				State:     state,
				FromRole:  fromRole,
				ToRole:    toRole,
				Limit:     limit,
			})
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if asJSON {
				return printJSON(msgs)
			}
			printMetadataList(msgs)
			return nil
		},
	}

	cmd.Flags().StringVar(&eventType, "event-type", "", "Exact event type")
	cmd.Flags().StringVar(&artifact, "artifact", "", "Artifact path (matches path containment either way)")
	cmd.Flags().StringVar(&since, "since", "", "Cutoff: relative (7d, 12h, 30m) or absolute (2026-01-02)")
	cmd.Flags().StringVar(&state, "state", "", "Exact workflow state")
	cmd.Flags().StringVar(&fromRole, "from", "", "Sender prefix before @")
	cmd.Flags().StringVar(&toRole, "to", "", "Recipient prefix before @")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum results (0 = unlimited)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw metadata records as JSON")
	queueFlag(cmd, &panel)

	return cmd
}

func mailListCmd() *cobra.Command {
	var panel string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent messages",
		Long:  `List messages in a queue, most recent first. Shorthand for an unfiltered search.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := wire.MailboxService().Search(cmd.Context(), resolveQueue(panel), query.Criteria{Limit: limit})
			if err != nil {
				return fmt.Errorf("list failed: %w", err)
			}
			if asJSON {
				return printJSON(msgs)
			}
			printMetadataList(msgs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum results (0 = unlimited)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw metadata records as JSON")
	queueFlag(cmd, &panel)

	return cmd
}

func mailReadCmd() *cobra.Command {
	var panel string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "read <key>",
		Short: "Read one message in full",
		Long:  `Print a message's headers and decoded plain-text body.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := wire.MailboxService().ReadMessage(cmd.Context(), resolveQueue(panel), args[0])
			if err != nil {
				return fmt.Errorf("failed to read message: %w", err)
			}

			if asJSON {
				return printJSON(msg)
			}

			bold := color.New(color.Bold)
			bold.Printf("Key:        %s\n", msg.Key)
			fmt.Printf("Message-ID: %s\n", msg.MessageID)
			fmt.Printf("From:       %s\n", msg.From)
			fmt.Printf("To:         %s\n", msg.To)
			fmt.Printf("Date:       %s\n", msg.Date)
			fmt.Printf("Subject:    %s\n", msg.Subject)
			if msg.EventType != "" {
				fmt.Printf("Event:      %s\n", msg.EventType)
			}
			if len(msg.Artifacts) > 0 {
				fmt.Printf("Artifacts:  %s\n", strings.Join(msg.Artifacts, ", "))
			}
			if msg.State != "" {
				fmt.Printf("State:      %s\n", msg.State)
			}
			if msg.InReplyTo != "" {
				fmt.Printf("In-Reply-To: %s\n", msg.InReplyTo)
			}
			fmt.Println()
			fmt.Println(msg.Body)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full message as JSON")
	queueFlag(cmd, &panel)

	return cmd
}

func mailThreadCmd() *cobra.Command {
	var panel string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "thread <message-id>",
		Short: "Reconstruct a conversation thread",
		Long: `Print every message transitively connected to the given Message-ID
through In-Reply-To and References, oldest first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := wire.MailboxService().Thread(cmd.Context(), resolveQueue(panel), args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve thread: %w", err)
			}
			if asJSON {
				return printJSON(msgs)
			}
			if len(msgs) == 0 {
				fmt.Println("No messages in thread.")
				return nil
			}
			for i, m := range msgs {
				fmt.Printf("%d. [%s] %s -> %s: %s\n", i+1, m.Date, m.From, m.To, m.Subject)
				fmt.Printf("   key %s  id %s\n", m.Key, m.MessageID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print thread metadata as JSON")
	queueFlag(cmd, &panel)

	return cmd
}

func bodyFromArgsOrStdin(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read body from stdin: %w", err)
	}
	return string(data), nil
}

func printMetadataList(msgs []models.Metadata) {
	if len(msgs) == 0 {
		fmt.Println("No messages found.")
		return
	}
	for _, m := range msgs {
		event := m.EventType
		if event == "" {
			event = "-"
		}
		fmt.Printf("%s  %s  %s -> %s  %s\n",
			color.CyanString(m.Key), color.YellowString(event), m.From, m.To, m.Subject)
	}
	fmt.Printf("\n%d message(s)\n", len(msgs))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
