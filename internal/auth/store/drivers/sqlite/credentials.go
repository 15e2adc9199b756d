package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/apufleet/fleetauth/internal/auth/domain"
	"github.com/apufleet/fleetauth/internal/auth/store"
)

type credentialsRepo struct {
	db *sql.DB
}

const credentialColumns = `id, name, username, password_hash, role, created_at, updated_at, last_login`

func (r *credentialsRepo) GetByID(ctx context.Context, id string) (domain.Credential, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE id = ?`, id)
	return scanCredential(row)
}

func (r *credentialsRepo) GetByUsername(ctx context.Context, username string) (domain.Credential, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE username = ?`, username)
	return scanCredential(row)
}

func (r *credentialsRepo) Create(ctx context.Context, c domain.Credential) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO credentials (id, name, username, password_hash, role, created_at, updated_at, last_login)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Username, c.PasswordHash, string(c.Role),
		c.CreatedAt, c.UpdatedAt, mapOptionalTime(c.LastLogin))
	if err != nil && isConstraintViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *credentialsRepo) UpdatePasswordHash(ctx context.Context, id string, newHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE credentials SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return mapNoRows(res)
}

func (r *credentialsRepo) TouchLastLogin(ctx context.Context, id string, when time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE credentials SET last_login = ? WHERE id = ?`, when.UTC(), id)
	if err != nil {
		return err
	}
	return mapNoRows(res)
}

func (r *credentialsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

func scanCredential(row *sql.Row) (domain.Credential, error) {
	var (
		c         domain.Credential
		role      string
		lastLogin sql.NullTime
	)
	err := row.Scan(&c.ID, &c.Name, &c.Username, &c.PasswordHash, &role,
		&c.CreatedAt, &c.UpdatedAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Credential{}, store.ErrNotFound
		}
		return domain.Credential{}, err
	}
	c.Role = domain.Role(role)
	if lastLogin.Valid {
		t := lastLogin.Time
		c.LastLogin = &t
	}
	return c, nil
}

func mapNoRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// modernc.org/sqlite surfaces UNIQUE violations as plain errors, so we
// inspect the message rather than a typed code.
func isConstraintViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed")
}
