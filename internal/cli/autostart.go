package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelltint/shelltint/internal/platform"
)

var autostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Manage starting the daemon at login",
}

var autostartEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Start the daemon at login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		as, err := autoStart()
		if err != nil {
			return err
		}
		daemonPath, err := findDaemonBinary()
		if err != nil {
			return err
		}
		if err := as.Enable(`"` + daemonPath + `"`); err != nil {
			return err
		}
		fmt.Println(styleSuccess.Render("Autostart enabled: ") + styleValue.Render(daemonPath))
		return nil
	},
}

var autostartDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Stop starting the daemon at login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		as, err := autoStart()
		if err != nil {
			return err
		}
		if err := as.Disable(); err != nil {
			return err
		}
		fmt.Println("Autostart disabled.")
		return nil
	},
}

var autostartStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the daemon starts at login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		as, err := autoStart()
		if err != nil {
			return err
		}
		on, err := as.Enabled()
		if err != nil {
			return err
		}
		fmt.Printf("Autostart: %s\n", onOff(on))
		return nil
	},
}

func init() {
	autostartCmd.AddCommand(autostartEnableCmd)
	autostartCmd.AddCommand(autostartDisableCmd)
	autostartCmd.AddCommand(autostartStatusCmd)
}

func autoStart() (platform.AutoStart, error) {
	p, err := platform.NewProvider()
	if err != nil {
		return nil, err
	}
	if p.AutoStart == nil {
		return nil, platform.ErrUnsupported
	}
	return p.AutoStart, nil
}
