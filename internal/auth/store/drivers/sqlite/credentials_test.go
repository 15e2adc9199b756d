package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/apufleet/fleetauth/internal/auth/domain"
	"github.com/apufleet/fleetauth/internal/auth/store"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func testCredential() domain.Credential {
	return domain.Credential{
		ID:           "aadmin",
		Name:         "Ann Admin",
		Username:     "aadmin",
		PasswordHash: "0f6ddc2a9d1a4f4ad19b0b15b262a9bf28b7e2bb06af9039dbdbeb4a25e9f86e",
		Role:         domain.RoleAdmin,
	}
}

func TestCredentialsRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	repo := st.Credentials()

	require.NoError(t, repo.Create(ctx, testCredential()))

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, "aadmin")
		require.NoError(t, err)
		require.Equal(t, "Ann Admin", got.Name)
		require.Equal(t, domain.RoleAdmin, got.Role)
		require.Nil(t, got.LastLogin)
		require.False(t, got.CreatedAt.IsZero())
	})

	t.Run("get by username", func(t *testing.T) {
		got, err := repo.GetByUsername(ctx, "aadmin")
		require.NoError(t, err)
		require.Equal(t, "aadmin", got.ID)
	})

	t.Run("missing id maps to ErrNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "nobody")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("missing username maps to ErrNotFound", func(t *testing.T) {
		_, err := repo.GetByUsername(ctx, "nobody")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestCreateConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	repo := st.Credentials()

	require.NoError(t, repo.Create(ctx, testCredential()))
	require.ErrorIs(t, repo.Create(ctx, testCredential()), store.ErrAlreadyExists)
}

func TestTouchLastLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	repo := st.Credentials()

	require.NoError(t, repo.Create(ctx, testCredential()))

	when := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	require.NoError(t, repo.TouchLastLogin(ctx, "aadmin", when))

	got, err := repo.GetByID(ctx, "aadmin")
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	require.True(t, got.LastLogin.Equal(when))

	t.Run("unknown id maps to ErrNotFound", func(t *testing.T) {
		require.ErrorIs(t, repo.TouchLastLogin(ctx, "nobody", when), store.ErrNotFound)
	})
}

func TestUpdatePasswordHash(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	repo := st.Credentials()

	require.NoError(t, repo.Create(ctx, testCredential()))
	require.NoError(t, repo.UpdatePasswordHash(ctx, "aadmin", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"))

	got, err := repo.GetByID(ctx, "aadmin")
	require.NoError(t, err)
	require.Contains(t, got.PasswordHash, "$argon2id$")
	require.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))

	t.Run("unknown id maps to ErrNotFound", func(t *testing.T) {
		require.ErrorIs(t, repo.UpdatePasswordHash(ctx, "nobody", "x"), store.ErrNotFound)
	})
}

func TestIsEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	repo := st.Credentials()

	empty, err := repo.IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	require.NoError(t, repo.Create(ctx, testCredential()))

	empty, err = repo.IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)
}
