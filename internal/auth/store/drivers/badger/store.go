// Package badger implements the credential store on BadgerDB, a
// document-style embedded key-value store. Records are JSON values
// keyed by normalized id, with a secondary key per username for the
// fallback lookup.
package badger

import (
	"context"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/apufleet/fleetauth/internal/auth/store"
)

type Store struct {
	db *badger.DB
}

// NewStore opens (or creates) a Badger database rooted at dir.
func NewStore(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // badger's own logger is noisy; slogx covers the service

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// ApplyMigrations is a no-op: badger has no schema.
func (s *Store) ApplyMigrations() error { return nil }

// Ping verifies the database is still usable by running an empty view.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return badger.ErrDBClosed
	}
	return s.db.View(func(txn *badger.Txn) error { return nil })
}

func (s *Store) Credentials() store.Credentials { return &credentialsRepo{db: s.db} }
