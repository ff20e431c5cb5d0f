package agent

import (
	"fmt"
	"strings"

	"github.com/example/courier/internal/config"
)

// CatchupPrompt builds the fresh-context prompt for a role session. It tells
// the worker which artifacts hold its current state, how far back to read
// mail, and to drain the queue before exiting.
func CatchupPrompt(roleName string, role config.Role) string {
	days := role.CatchupDays
	if days <= 0 {
		days = 7
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s - Session Catch-Up\n\n", roleName)
	fmt.Fprintf(&b, "You are starting a fresh session as %s. Follow this catch-up protocol:\n\n", roleName)

	b.WriteString("## 1. Read Current State from Artifacts\n\n")
	if len(role.CatchupArtifacts) > 0 {
		b.WriteString("The following artifacts contain your current work state:\n\n")
		for _, artifact := range role.CatchupArtifacts {
			fmt.Fprintf(&b, "- %s\n", artifact)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## 2. Review Recent Mail\n\n")
	fmt.Fprintf(&b, "Check messages from the last %d days addressed to %s:\n\n", days, roleName)
	for _, eventType := range role.EventTypes {
		fmt.Fprintf(&b, "    courier mail search --event-type %s --to %s --since %dd\n", eventType, roleName, days)
	}

	b.WriteString(`
## 3. Process Pending Messages

For each pending message:

1. Read the full message with: courier mail read <key>
2. Read the artifacts referenced in its X-Artifacts header
3. Perform your role's work
4. Send your response with: courier mail send

## 4. Drain the Queue

After each message, re-run the searches above and continue until no
pending messages remain. Then exit cleanly; this session's context is
discarded and the next spawn starts fresh.
`)

	return b.String()
}

// MemberPrompt builds the prompt for one panel member session. Panel-internal
// mail stays invisible to other panels; cross-panel communication goes
// through the shared queue.
func MemberPrompt(member, roleType, artifactPath, panelQueue string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Panel Member Session - %s\n\n", member)
	b.WriteString("You are participating as a member of a multi-model panel.\n\n")
	fmt.Fprintf(&b, "Your role: %s\n", roleType)
	fmt.Fprintf(&b, "Panel member ID: %s\n", member)
	fmt.Fprintf(&b, "Artifact: %s\n\n", artifactPath)

	b.WriteString("## Panel Operation Principles\n\n")
	b.WriteString("1. Independence: you have fresh context and no memory of prior sessions.\n")
	fmt.Fprintf(&b, "2. Mail visibility: panel-internal queue %q is invisible to other panels;\n", panelQueue)
	b.WriteString("   use the shared workflow queue for anything cross-panel.\n")
	b.WriteString("3. Task: read the artifact, perform your role's function, discuss with\n")
	b.WriteString("   panel members via panel-internal mail, then submit your assessment as a\n")
	b.WriteString("   panel-decision message whose subject states approve, reject, or revision.\n\n")
	fmt.Fprintf(&b, "Begin by reading: %s\n", artifactPath)

	return b.String()
}
