// Package postgres persists the ledger in PostgreSQL via database/sql (pgx
// driver). Intended for service deployments where several replicas share one
// database; the single-row upsert keeps each save atomic.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
)

// Open returns a *sql.DB using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

const schema = `CREATE TABLE IF NOT EXISTS ledgers (
	owner       TEXT PRIMARY KEY,
	document    JSONB NOT NULL,
	update_time TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store implements the ledger store on PostgreSQL.
type Store struct {
	db    *sql.DB
	owner string
}

// New connects with the given DSN and ensures the schema.
func New(dsn, owner string) (*Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db, owner)
}

// NewWithDB wires an existing connection (used by the factory).
func NewWithDB(db *sql.DB, owner string) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("nil db")
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("ensure ledger schema: %w", err)
	}
	return &Store{db: db, owner: owner}, nil
}

func (s *Store) Load(ctx context.Context) (model.Ledger, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT document FROM ledgers WHERE owner = $1`, s.owner).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Ledger{}, nil
	}
	if err != nil {
		return model.Ledger{}, fmt.Errorf("load ledger for %s: %w", s.owner, err)
	}
	led, err := model.DecodeLedger(doc)
	if err != nil {
		return model.Ledger{}, fmt.Errorf("decode ledger for %s: %w", s.owner, err)
	}
	return led, nil
}

func (s *Store) Save(ctx context.Context, led model.Ledger) error {
	b, err := model.EncodeLedger(led)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO ledgers (owner, document, update_time)
        VALUES ($1, $2, now())
        ON CONFLICT (owner) DO UPDATE SET document = excluded.document, update_time = now()
    `, s.owner, b)
	if err != nil {
		return fmt.Errorf("save ledger for %s: %w", s.owner, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
