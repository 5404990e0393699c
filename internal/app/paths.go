package app

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDirName     = "hisn"
	dbFileName     = "hisn.db"
	configFileName = "hisn.yaml"

	// DBPathEnv overrides the default database location when set.
	DBPathEnv = "HISN_DB"
)

func DefaultDBPath() (string, error) {
	if p := os.Getenv(DBPathEnv); p != "" {
		return p, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName, dbFileName), nil
}

// ConfigPathFor returns the runtime config file that sits next to the database.
func ConfigPathFor(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), configFileName)
}

func EnsureDBDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return nil
}
