package store

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	identitiesFile = "identities.json"
	mutedFile      = "muted.json"
	guardFile      = "relaybot.lock"
)

// ResolveDataDir resolves the configured data directory, falling back to
// ~/.relaybot, and ensures it exists.
func ResolveDataDir(dataDir string) (string, error) {
	dir := strings.TrimSpace(dataDir)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".relaybot")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// IdentitiesPath returns the handle->id mapping file inside dataDir.
func IdentitiesPath(dataDir string) string {
	return filepath.Join(dataDir, identitiesFile)
}

// MutedPath returns the muted-id set file inside dataDir.
func MutedPath(dataDir string) string {
	return filepath.Join(dataDir, mutedFile)
}

// GuardPath returns the single-instance lock file inside dataDir.
func GuardPath(dataDir string) string {
	return filepath.Join(dataDir, guardFile)
}
