package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/courier/internal/config"
	"github.com/example/courier/internal/models"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize courier configuration",
		Long: `Write the default configuration to .courier/config.json in the
current directory and create the shared maildir queue.

The defaults define a spec-writer/spec-reviewer/implementer workflow and a
three-member review panel; edit the file to match your setup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to resolve working directory: %w", err)
			}

			configFile := filepath.Join(cwd, ".courier", "config.json")
			if _, err := os.Stat(configFile); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", configFile)
			}

			cfg := config.DefaultConfig()
			if err := config.SaveConfig(cwd, cfg); err != nil {
				return err
			}
			fmt.Printf("%s Wrote %s\n", color.GreenString("✓"), configFile)

			sharedDir := filepath.Join(cfg.MaildirRoot, models.SharedQueue)
			for _, sub := range []string{"tmp", "new", "cur"} {
				if err := os.MkdirAll(filepath.Join(sharedDir, sub), 0o755); err != nil {
					return fmt.Errorf("failed to create maildir: %w", err)
				}
			}
			fmt.Printf("%s Created shared queue at %s\n", color.GreenString("✓"), sharedDir)

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println(`  courier mail send "hello" --from spec-writer --to spec-reviewer --subject hi`)
			fmt.Println("  courier mail list")

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
