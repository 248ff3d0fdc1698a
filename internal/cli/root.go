// Package cli implements the shelltint CLI commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelltint/shelltint/internal/config"
	_ "github.com/shelltint/shelltint/internal/platform/win32"
)

var rootCmd = &cobra.Command{
	Use:   "shelltint",
	Short: "Control the ShellTint overlay daemon",
	Long: `ShellTint tints the Windows taskbar and start menu with translucent overlays.
This command talks to the running shelltintd daemon over its control socket.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := config.LoadEnvFile(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), styleWarning.Render("Warning: "+err.Error()))
		}
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add subcommands (alphabetical)
	rootCmd.AddCommand(autostartCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(watchCmd)
}
