// Package file persists the ledger as a single JSON document on disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
)

// Store reads and writes one ledger document at a fixed path. The default
// path under the user's state directory comes from internal/localstate.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the ledger, returning an empty one when the file does not
// exist yet.
func (s *Store) Load(_ context.Context) (model.Ledger, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.Ledger{}, nil
	}
	if err != nil {
		return model.Ledger{}, fmt.Errorf("read ledger %s: %w", s.path, err)
	}
	led, err := model.DecodeLedger(b)
	if err != nil {
		return model.Ledger{}, fmt.Errorf("decode ledger %s: %w", s.path, err)
	}
	return led, nil
}

// Save writes the ledger to a temp file in the same directory and renames it
// over the target, so readers never observe a torn document.
func (s *Store) Save(_ context.Context, led model.Ledger) error {
	b, err := model.EncodeLedger(led)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write ledger temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}
