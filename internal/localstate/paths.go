package localstate

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	envHome         = "SPACED_REPETITION_HOME" // tests point this at a temp dir
	dirName         = ".spaced-repetition"
	ledgerFilename  = "ledger.json"
	dbFilename      = "ledger.db"
	profileFilename = "profile.yaml"
)

// DataDir returns the directory holding local scheduler state, by default
// ~/.spaced-repetition. The directory is created 0700 on first use.
func DataDir() (string, error) {
	if custom := os.Getenv(envHome); custom != "" {
		if err := os.MkdirAll(custom, 0o700); err != nil {
			return "", err
		}
		return custom, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user home: %w", err)
	}
	dir := filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// LedgerPath returns the absolute path of the default ledger JSON file.
func LedgerPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ledgerFilename), nil
}

// DBPath returns the absolute path to the SQLite database file.
func DBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFilename), nil
}

// ProfilePath returns the absolute path of the study profile YAML file.
func ProfilePath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, profileFilename), nil
}
