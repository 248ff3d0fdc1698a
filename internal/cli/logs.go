package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelltint/shelltint/internal/config"
)

var (
	logsLines int
	logsList  bool
	logsIndex int
)

var daemonLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the daemon log",
	Args:  cobra.NoArgs,
	RunE:  runDaemonLogs,
}

func init() {
	daemonLogsCmd.Flags().IntVarP(&logsLines, "lines", "n", 50, "Number of lines to show (0 for all)")
	daemonLogsCmd.Flags().BoolVar(&logsList, "list", false, "List the active log and rotated backups")
	daemonLogsCmd.Flags().IntVar(&logsIndex, "file", 0, "Which file to read, as numbered by --list")
	daemonCmd.AddCommand(daemonLogsCmd)
}

func runDaemonLogs(cmd *cobra.Command, args []string) error {
	logs, err := config.ListDaemonLogs()
	if err != nil {
		return fmt.Errorf("failed to list logs: %w", err)
	}
	if len(logs) == 0 {
		fmt.Println("No daemon logs yet.")
		return nil
	}

	out := cmd.OutOrStdout()
	if logsList {
		for i, l := range logs {
			fmt.Fprintf(out, "  %s %s  %s  %s\n",
				styleLabel.Render(fmt.Sprintf("%2d", i)),
				styleValue.Render(l.Name),
				styleHint.Render(l.ModTime.Format("2006-01-02 15:04:05")),
				styleHint.Render(fmt.Sprintf("%d KB", (l.Size+1023)/1024)),
			)
		}
		return nil
	}

	if logsIndex < 0 || logsIndex >= len(logs) {
		return fmt.Errorf("no log file %d (have %d)", logsIndex, len(logs))
	}
	lines, err := config.TailLog(logs[logsIndex], logsLines)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	return nil
}
