package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chessclub"

// DefaultDir returns the database directory used when none is configured,
// creating it if needed. The base is the user config directory on macOS and
// Windows, and $XDG_DATA_HOME (or ~/.local/share) elsewhere.
func DefaultDir() (string, error) {
	base, err := dataHome()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, appName, "db")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func dataHome() (string, error) {
	switch runtime.GOOS {
	case "darwin", "windows":
		return os.UserConfigDir()
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}
