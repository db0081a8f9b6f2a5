package store

import (
	"context"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
)

// Store persists the session ledger. Implementations live under
// internal/store/<driver>/ (file, sqlite, postgres).
//
// Load returns an empty ledger when nothing has been persisted yet. Save
// must be atomic from the caller's perspective: either the new ledger fully
// lands or the prior state is retained.
type Store interface {
	Load(ctx context.Context) (model.Ledger, error)
	Save(ctx context.Context, led model.Ledger) error
}
