package badger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/apufleet/fleetauth/internal/auth/domain"
	"github.com/apufleet/fleetauth/internal/auth/store"
)

type credentialsRepo struct {
	db *badger.DB
}

// Key layout:
//
//	cred:<id>        -> JSON credential record
//	uname:<username> -> id (secondary index for the fallback lookup)
func keyCredential(id string) []byte  { return []byte("cred:" + id) }
func keyUsername(uname string) []byte { return []byte("uname:" + uname) }

// credentialDoc is the stored document shape. Field names match the
// records the legacy dashboard wrote to its document store.
type credentialDoc struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Username  string     `json:"username"`
	Password  string     `json:"password"`
	Role      string     `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func encodeCredential(c domain.Credential) ([]byte, error) {
	return json.Marshal(credentialDoc{
		ID:        c.ID,
		Name:      c.Name,
		Username:  c.Username,
		Password:  c.PasswordHash,
		Role:      string(c.Role),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		LastLogin: c.LastLogin,
	})
}

func decodeCredential(val []byte) (domain.Credential, error) {
	var doc credentialDoc
	if err := json.Unmarshal(val, &doc); err != nil {
		return domain.Credential{}, err
	}
	return domain.Credential{
		ID:           doc.ID,
		Name:         doc.Name,
		Username:     doc.Username,
		PasswordHash: doc.Password,
		Role:         domain.Role(doc.Role),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
		LastLogin:    doc.LastLogin,
	}, nil
}

func (r *credentialsRepo) GetByID(ctx context.Context, id string) (domain.Credential, error) {
	if err := ctx.Err(); err != nil {
		return domain.Credential{}, err
	}

	var cred domain.Credential
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyCredential(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decErr error
			cred, decErr = decodeCredential(val)
			return decErr
		})
	})
	if err != nil {
		return domain.Credential{}, err
	}
	return cred, nil
}

func (r *credentialsRepo) GetByUsername(ctx context.Context, username string) (domain.Credential, error) {
	if err := ctx.Err(); err != nil {
		return domain.Credential{}, err
	}

	var cred domain.Credential
	err := r.db.View(func(txn *badger.Txn) error {
		idx, err := txn.Get(keyUsername(username))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}

		var id string
		if err := idx.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}

		item, err := txn.Get(keyCredential(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			// Dangling index entry; treat as absent.
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decErr error
			cred, decErr = decodeCredential(val)
			return decErr
		})
	})
	if err != nil {
		return domain.Credential{}, err
	}
	return cred, nil
}

func (r *credentialsRepo) Create(ctx context.Context, c domain.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	val, err := encodeCredential(c)
	if err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(keyCredential(c.ID)); err == nil {
			return store.ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if _, err := txn.Get(keyUsername(c.Username)); err == nil {
			return store.ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Set(keyCredential(c.ID), val); err != nil {
			return err
		}
		return txn.Set(keyUsername(c.Username), []byte(c.ID))
	})
}

func (r *credentialsRepo) UpdatePasswordHash(ctx context.Context, id string, newHash string) error {
	return r.mutate(ctx, id, func(c *domain.Credential) {
		c.PasswordHash = newHash
		c.UpdatedAt = time.Now().UTC()
	})
}

func (r *credentialsRepo) TouchLastLogin(ctx context.Context, id string, when time.Time) error {
	return r.mutate(ctx, id, func(c *domain.Credential) {
		t := when.UTC()
		c.LastLogin = &t
	})
}

func (r *credentialsRepo) IsEmpty(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	empty := true
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte("cred:")

		it := txn.NewIterator(opts)
		defer it.Close()

		it.Rewind()
		empty = !it.Valid()
		return nil
	})
	return empty, err
}

// mutate reads, modifies, and rewrites a record in one transaction.
func (r *credentialsRepo) mutate(ctx context.Context, id string, fn func(*domain.Credential)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(keyCredential(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}

		var cred domain.Credential
		if err := item.Value(func(val []byte) error {
			var decErr error
			cred, decErr = decodeCredential(val)
			return decErr
		}); err != nil {
			return err
		}

		fn(&cred)

		val, err := encodeCredential(cred)
		if err != nil {
			return err
		}
		return txn.Set(keyCredential(id), val)
	})
}
