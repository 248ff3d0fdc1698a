package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelltint/shelltint/internal/client"
	"github.com/shelltint/shelltint/internal/config"
	"github.com/shelltint/shelltint/internal/daemon/protocol"
)

// stopGrace is how long stop waits after Shutdown before killing the process.
const stopGrace = 3 * time.Second

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the ShellTint daemon",
	Long:  `Manage the shelltintd daemon process.`,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStatus,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStop,
}

func init() {
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	running, info, err := GetDaemonStatus()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if running && info != nil {
		fmt.Printf("Daemon is already running (PID %d).\n", info.PID)
		return nil
	}

	fmt.Print("Starting daemon...")
	if startErr := startDaemon(); startErr != nil {
		fmt.Println()
		return startErr
	}

	_, freshInfo, err := GetDaemonStatus()
	if err != nil || freshInfo == nil {
		fmt.Println(" started.")
		return nil
	}

	fmt.Printf(" started (PID %d).\n", freshInfo.PID)
	return nil
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	running, info, err := GetDaemonStatus()
	if err != nil {
		return err
	}

	if !running || info == nil {
		fmt.Println("Daemon is not running.")
		return nil
	}

	uptime := time.Since(info.StartedAt).Truncate(time.Second)

	fmt.Println("Daemon is running.")
	fmt.Printf("  Socket:     %s\n", info.Socket)
	fmt.Printf("  PID:        %d\n", info.PID)
	fmt.Printf("  Uptime:     %s\n", uptime)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
	defer cancel()
	st, err := client.Do(ctx, nil)
	if err != nil {
		// Non-fatal: the process is up but the channel did not answer.
		fmt.Printf("\n%s\n", styleWarning.Render("Control channel not responding: "+err.Error()))
		return nil
	}
	fmt.Println()
	fmt.Print(formatStatus(st))
	return nil
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if !running || info == nil {
		fmt.Println("Daemon is not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
	_, sendErr := client.Do(ctx, protocol.Shutdown{})
	cancel()
	if sendErr != nil {
		fmt.Println(styleHint.Render("Shutdown request failed, waiting for exit: " + sendErr.Error()))
	}

	if waitForExit(stopGrace) {
		fmt.Println("Daemon stopped.")
		return nil
	}

	process, err := os.FindProcess(info.PID)
	if err != nil {
		return fmt.Errorf("failed to find daemon process: %w", err)
	}
	if err := process.Kill(); err != nil {
		return fmt.Errorf("failed to kill daemon: %w", err)
	}
	_ = config.RemoveDaemonInfo()
	fmt.Println("Daemon killed after timeout.")
	return nil
}

// waitForExit polls daemon.yaml until the daemon is gone or timeout passes.
func waitForExit(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		running, _, err := config.IsDaemonRunning()
		if err == nil && !running {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return false
}
