// Package sqlite persists the ledger in a SQLite database, one JSON document
// per owner so a save is a single atomic upsert.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
)

// Open opens (or creates) a SQLite database at the given path and enables WAL journal mode.
func Open(path string) (*sql.DB, error) {
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

const schema = `CREATE TABLE IF NOT EXISTS Ledgers (
	Owner      TEXT PRIMARY KEY,
	Document   TEXT NOT NULL,
	UpdateTime TIMESTAMP NOT NULL
)`

// Store implements the ledger store on SQLite.
type Store struct {
	db    *sql.DB
	owner string
}

// New opens the database at path and ensures the schema.
func New(path, owner string) (*Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db, owner)
}

// NewWithDB wires an existing connection (used by the factory).
func NewWithDB(db *sql.DB, owner string) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("ensure ledger schema: %w", err)
	}
	return &Store{db: db, owner: owner}, nil
}

func (s *Store) Load(ctx context.Context) (model.Ledger, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT Document FROM Ledgers WHERE Owner = ?`, s.owner).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Ledger{}, nil
	}
	if err != nil {
		return model.Ledger{}, fmt.Errorf("load ledger for %s: %w", s.owner, err)
	}
	led, err := model.DecodeLedger([]byte(doc))
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
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO Ledgers (Owner, Document, UpdateTime) VALUES (?,?,?)
		 ON CONFLICT(Owner) DO UPDATE SET Document = excluded.Document, UpdateTime = excluded.UpdateTime`,
		s.owner, string(b), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save ledger for %s: %w", s.owner, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
