package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/simcheck/internal/constants"
)

// GlobalPath returns the path to the global .simcheck directory.
// On Unix: ~/.simcheck
// On Windows: %USERPROFILE%\.simcheck
func GlobalPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, constants.StateDirName), nil
}

// LocalPath returns the .simcheck directory for the given project root.
func LocalPath(projectRoot string) string {
	return filepath.Join(projectRoot, constants.StateDirName)
}

// EnsureDir creates dir if it doesn't exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", filepath.Base(dir), err)
	}
	return nil
}
