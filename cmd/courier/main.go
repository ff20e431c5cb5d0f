package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/courier/internal/cli"
	"github.com/example/courier/internal/version"
	"github.com/example/courier/internal/wire"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "courier",
		Short:   "courier - mail-based coordination for agent workflows",
		Version: version.String(),
		Long: `courier coordinates autonomous agent roles through maildir message
queues: a shared workflow queue for cross-role mail and per-panel queues
for multi-model consensus decisions.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if configPath != "" {
				wire.SetConfigPath(configPath)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default .courier/config.json)")

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.MailCmd())
	rootCmd.AddCommand(cli.PanelCmd())
	rootCmd.AddCommand(cli.AgentCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
