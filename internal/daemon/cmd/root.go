// Package cmd is the shelltintd command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shelltint/shelltint/internal/config"
	"github.com/shelltint/shelltint/internal/logging"
)

var opts = config.DefaultDaemonOptions()

var rootCmd = &cobra.Command{
	Use:           "shelltintd",
	Short:         "Tint the Windows taskbar and start menu",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFile(); err != nil {
			fmt.Fprintln(os.Stderr, "shelltintd:", err)
		}
		opts.ApplyEnv()
		return run(opts)
	},
}

func init() {
	rootCmd.Flags().BoolVar(&opts.Foreground, "foreground", opts.Foreground, "Run in foreground without the tray icon")
	rootCmd.Flags().StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level (debug, info, warn, error)")
	rootCmd.Flags().DurationVar(&opts.Settle, "settle", opts.Settle, "Delay before re-detecting the taskbar after a shell restart")
}

// Execute runs the daemon command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "shelltintd:", err)
		return err
	}
	return nil
}

func run(opts config.DaemonOptions) error {
	if err := config.EnsureGlobalDir(); err != nil {
		return fmt.Errorf("failed to create global directory: %w", err)
	}
	if err := config.EnsureGlobalLogsDir(); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	logFile, err := config.DaemonLogFile()
	if err != nil {
		return err
	}
	log, err := logging.New(logging.Options{
		FilePath: logFile,
		Level:    opts.LogLevel,
		Console:  opts.Foreground,
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	running, info, err := config.IsDaemonRunning()
	if err != nil {
		log.Fatal("Failed to check daemon status", zap.Error(err))
	}
	if running {
		log.Fatal("Daemon already running", zap.Int("pid", info.PID), zap.String("socket", info.Socket))
	}

	if opts.Foreground {
		log.Info("Running in foreground mode (no system tray)")
		runForeground(opts, log)
	} else {
		log.Info("Running in background mode (with system tray)")
		runWithTray(opts, log)
	}
	return nil
}
