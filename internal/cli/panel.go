package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/courier/internal/app"
	"github.com/example/courier/internal/core/consensus"
	"github.com/example/courier/internal/models"
	"github.com/example/courier/internal/wire"
)

// PanelCmd returns the panel command
func PanelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Multi-model panel consensus",
		Long: `Inspect configured panels and evaluate their decision messages.

A panel is an ordered group of members reviewing one artifact through a
panel-internal mail queue. Consensus is computed from panel-decision
messages under the panel's decision model.`,
	}

	cmd.AddCommand(panelListCmd())
	cmd.AddCommand(panelShowCmd())
	cmd.AddCommand(panelConsensusCmd())

	return cmd
}

func panelListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured panels",
		RunE: func(cmd *cobra.Command, args []string) error {
			panels, err := wire.PanelService().ListPanels()
			if err != nil {
				return fmt.Errorf("failed to list panels: %w", err)
			}
			if asJSON {
				return printJSON(panels)
			}
			if len(panels) == 0 {
				fmt.Println("No panels configured.")
				return nil
			}
			for _, p := range panels {
				fmt.Printf("%s  model=%s  role=%s  members=%s\n",
					color.CyanString(p.Name), p.Model, p.RoleType, strings.Join(p.Members, ","))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print panels as JSON")
	return cmd
}

func panelShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <panel>",
		Short: "Show one panel's configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			panel, err := wire.PanelService().GetPanel(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve panel: %w", err)
			}
			if asJSON {
				return printJSON(panel)
			}

			bold := color.New(color.Bold)
			bold.Printf("Panel: %s\n", panel.Name)
			fmt.Printf("  Decision model: %s\n", panel.Model)
			fmt.Printf("  Role type:      %s\n", panel.RoleType)
			fmt.Printf("  Queue:          %s\n", models.PanelQueue(panel.Name))
			fmt.Println("  Members:")
			for i, member := range panel.Members {
				marker := ""
				if i == 0 {
					marker = color.HiMagentaString(" (primary)")
				}
				fmt.Printf("    %d. %s%s\n", i+1, member, marker)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the panel as JSON")
	return cmd
}

func panelConsensusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "consensus <panel>",
		Short: "Evaluate a panel's consensus",
		Long: `Collect panel-decision messages from the panel's internal queue,
reduce them to one vote per member (most recent wins), and apply the
panel's decision model. A panel that has not yet decided is a normal
outcome, not an error; the exit code is 0 either way.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := wire.PanelService().CheckConsensus(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("consensus check failed: %w", err)
			}
			if asJSON {
				return printJSON(report)
			}

			panel, err := wire.PanelService().GetPanel(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Panel %s (%s, %d decision message(s))\n", report.Panel, report.Model, report.Decisions)
			for _, line := range app.FormatTally(panel, report.Result) {
				fmt.Printf("  %s\n", line)
			}
			fmt.Println()
			if report.Result.Reached {
				fmt.Printf("%s Consensus: %s\n", verdictIcon(report.Result.Verdict), report.Result.Verdict)
			} else {
				fmt.Printf("%s No consensus\n", color.YellowString("○"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the consensus report as JSON")
	return cmd
}

func verdictIcon(v consensus.Vote) string {
	switch v {
	case consensus.Approve:
		return color.GreenString("✓")
	case consensus.Reject:
		return color.RedString("✗")
	default:
		return color.YellowString("↻")
	}
}
