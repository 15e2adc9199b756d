package store

import (
	"context"
	"errors"
	"time"

	"github.com/apufleet/fleetauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// badger) implement this. The credential collection is the only entity
// this service owns; everything else on the dashboard side lives
// elsewhere.
type Store interface {
	Credentials() Credentials

	// ApplyMigrations brings the underlying schema up to date. Drivers
	// without a schema (badger) return nil.
	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the store is still reachable.
	Ping(ctx context.Context) error
}

type Credentials interface {
	// GetByID returns a credential by its normalized id. This is the
	// fast path for sign-in.
	GetByID(ctx context.Context, id string) (domain.Credential, error)

	// GetByUsername is the fallback lookup used when the derived id
	// misses (records created before id normalization settled).
	GetByUsername(ctx context.Context, username string) (domain.Credential, error)

	// Create inserts a new credential. Fails with ErrAlreadyExists if
	// the id is taken.
	Create(ctx context.Context, c domain.Credential) error

	// UpdatePasswordHash replaces the stored hash and bumps updated_at.
	// Used to upgrade legacy digests after a successful sign-in.
	UpdatePasswordHash(ctx context.Context, id string, newHash string) error

	// TouchLastLogin stamps the last successful sign-in. Callers treat
	// failures as best-effort.
	TouchLastLogin(ctx context.Context, id string, when time.Time) error

	// IsEmpty reports whether any credential exists.
	IsEmpty(ctx context.Context) (bool, error)
}
