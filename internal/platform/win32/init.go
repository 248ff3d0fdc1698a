//go:build windows

package win32

import "github.com/shelltint/shelltint/internal/platform"

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		return &platform.Provider{
			Shell:     NewShell(),
			AutoStart: AutoStart{},
			StartUI:   startUI,
		}, nil
	}
}
