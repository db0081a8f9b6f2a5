// Package factory selects concrete adapters from configuration.
package factory

import (
	"fmt"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/config"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/localstate"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/store"
	filestore "github.com/JatheeshaMirihana/Spaced-Repetition/internal/store/file"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/store/postgres"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/store/sqlite"
)

// NewStore selects the ledger store adapter based on cfg.StoreDriver.
// Empty paths fall back to the dotdir defaults.
func NewStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case "file":
		path := cfg.LedgerPath
		if path == "" {
			var err error
			if path, err = localstate.LedgerPath(); err != nil {
				return nil, err
			}
		}
		return filestore.New(path), nil
	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			var err error
			if path, err = localstate.DBPath(); err != nil {
				return nil, err
			}
		}
		return sqlite.New(path, cfg.StoreOwner)
	case "postgres":
		return postgres.New(cfg.PostgresDSN, cfg.StoreOwner)
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER: %s", cfg.StoreDriver)
	}
}
