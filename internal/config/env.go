package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables honored by both binaries.
const (
	EnvHome     = "SHELLTINT_HOME"
	EnvLogLevel = "SHELLTINT_LOG_LEVEL"
	EnvSocket   = "SHELLTINT_SOCKET"
	EnvSettle   = "SHELLTINT_SETTLE"
)

// EnvFileName is an optional dotenv file in the global directory holding
// SHELLTINT_* variables.
const EnvFileName = "shelltint.env"

// LoadEnvFile loads <GlobalDir>/shelltint.env into the process environment.
// Variables already set take precedence. A missing file is not an error.
func LoadEnvFile() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, EnvFileName)
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// DaemonOptions are the daemon's runtime knobs, set from flags and then
// overridden by the environment.
type DaemonOptions struct {
	Foreground bool
	LogLevel   string
	Settle     time.Duration
}

// DefaultDaemonOptions returns the values used when no flag is given.
func DefaultDaemonOptions() DaemonOptions {
	return DaemonOptions{
		LogLevel: "info",
		Settle:   500 * time.Millisecond,
	}
}

// ApplyEnv overrides fields from SHELLTINT_* variables. Malformed values are ignored.
func (o *DaemonOptions) ApplyEnv() {
	if lvl := strings.TrimSpace(os.Getenv(EnvLogLevel)); lvl != "" {
		o.LogLevel = strings.ToLower(lvl)
	}
	if s := os.Getenv(EnvSettle); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d >= 0 {
			o.Settle = d
		}
	}
}
