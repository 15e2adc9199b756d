package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/apufleet/fleetauth/internal/auth/service"
	"github.com/apufleet/fleetauth/internal/auth/store/drivers/sqlite"
	"github.com/apufleet/fleetauth/pkg/authsdk"
	"github.com/apufleet/fleetauth/pkg/jwtx"
)

const testBootstrapToken = "test-bootstrap-token"

func newTestService(t *testing.T) *authsdk.Client {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSigner("https://auth.test", jwtx.DefaultAccessTokenTTL)
	require.NoError(t, err)

	accounts := &service.AccountService{Store: st, SideEffectTimeout: time.Second}
	router := NewRouter(signer, "test", st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	router.AccountService = accounts
	router.BootstrapService = &service.BootstrapService{Accounts: accounts, Token: testBootstrapToken}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return authsdk.NewClient(srv.URL)
}

func bootstrapAdmin(t *testing.T, client *authsdk.Client) {
	t.Helper()
	_, err := client.Bootstrap(context.Background(), testBootstrapToken, authsdk.CreateUserRequest{
		Name:     "Fleet Admin",
		Username: "fleet.admin",
		Password: "admin-pass",
	})
	require.NoError(t, err)
}

func TestBootstrapSignInCreateUserFlow(t *testing.T) {
	client := newTestService(t)
	ctx := context.Background()

	bootstrapAdmin(t, client)

	// Bootstrap is dead once an account exists.
	_, err := client.Bootstrap(ctx, testBootstrapToken, authsdk.CreateUserRequest{
		Username: "second.admin", Password: "pw",
	})
	require.ErrorIs(t, err, authsdk.ErrAlreadyBootstrapped)

	// Sign in as the bootstrapped admin.
	resp, err := client.SignIn(ctx, "fleet.admin", "admin-pass")
	require.NoError(t, err)
	require.Equal(t, "fleet_admin", resp.Principal.ID)
	require.Equal(t, "admin", resp.Principal.Role)
	require.Equal(t, "admin", resp.Principal.UserRole)
	require.Equal(t, "Bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)
	require.Positive(t, resp.ExpiresIn)

	// Create an inspector account.
	created, err := client.CreateUser(ctx, authsdk.CreateUserRequest{
		Name:     "Jane Doe",
		Username: "j.doe",
		Password: "inspector-pass",
		Role:     "inspector",
	})
	require.NoError(t, err)
	require.Equal(t, "j_doe", created.ID)

	// The new account can sign in and routes as inspector.
	inspector := newClientSameServer(client)
	got, err := inspector.SignIn(ctx, "j.doe", "inspector-pass")
	require.NoError(t, err)
	require.Equal(t, "inspector", got.Principal.UserRole)

	// Userinfo reflects the bearer identity.
	info, err := inspector.GetUserInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, "j_doe", info.Principal.ID)
	require.Equal(t, "inspector", info.Principal.Role)
}

// newClientSameServer returns a second client against the same server,
// with no bearer token of its own.
func newClientSameServer(c *authsdk.Client) *authsdk.Client {
	return authsdk.NewClient(c.BaseURL)
}

func TestSignInFailures(t *testing.T) {
	client := newTestService(t)
	ctx := context.Background()
	bootstrapAdmin(t, client)

	t.Run("unknown user", func(t *testing.T) {
		_, err := client.SignIn(ctx, "nobody", "pw")
		require.ErrorIs(t, err, authsdk.ErrNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := client.SignIn(ctx, "fleet.admin", "wrong")
		require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)

		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "Invalid password", apiErr.Description)
	})

	t.Run("empty body", func(t *testing.T) {
		resp, err := http.Post(client.BaseURL+"/v1/session", "application/json", nil)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	client := newTestService(t)
	ctx := context.Background()
	bootstrapAdmin(t, client)

	_, err := client.SignIn(ctx, "fleet.admin", "admin-pass")
	require.NoError(t, err)

	// Create a plain user, then try to create an account as them.
	_, err = client.CreateUser(ctx, authsdk.CreateUserRequest{
		Username: "m.smith", Password: "pw", Role: "user",
	})
	require.NoError(t, err)

	plain := newClientSameServer(client)
	_, err = plain.SignIn(ctx, "m.smith", "pw")
	require.NoError(t, err)

	_, err = plain.CreateUser(ctx, authsdk.CreateUserRequest{
		Username: "x.y", Password: "pw", Role: "user",
	})
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusForbidden, apiErr.StatusCode)

	// No token at all is rejected before the handler.
	anon := newClientSameServer(client)
	_, err = anon.CreateUser(ctx, authsdk.CreateUserRequest{
		Username: "x.y", Password: "pw", Role: "user",
	})
	require.ErrorIs(t, err, authsdk.ErrInvalidToken)
}

func TestCreateUserValidation(t *testing.T) {
	client := newTestService(t)
	ctx := context.Background()
	bootstrapAdmin(t, client)

	_, err := client.SignIn(ctx, "fleet.admin", "admin-pass")
	require.NoError(t, err)

	t.Run("invalid role", func(t *testing.T) {
		_, err := client.CreateUser(ctx, authsdk.CreateUserRequest{
			Username: "a.b", Password: "pw", Role: "supervisor",
		})
		require.ErrorIs(t, err, authsdk.ErrInvalidRequest)
	})

	t.Run("duplicate username", func(t *testing.T) {
		req := authsdk.CreateUserRequest{Username: "dup.user", Password: "pw", Role: "user"}
		_, err := client.CreateUser(ctx, req)
		require.NoError(t, err)
		_, err = client.CreateUser(ctx, req)
		require.ErrorIs(t, err, authsdk.ErrConflict)
	})

	t.Run("colliding derived id", func(t *testing.T) {
		_, err := client.CreateUser(ctx, authsdk.CreateUserRequest{
			Username: "p.one", Password: "pw", Role: "user",
		})
		require.NoError(t, err)
		// "p-one" derives the same id as "p.one".
		_, err = client.CreateUser(ctx, authsdk.CreateUserRequest{
			Username: "p-one", Password: "pw", Role: "user",
		})
		require.ErrorIs(t, err, authsdk.ErrConflict)
	})
}

func TestBootstrapTokenChecks(t *testing.T) {
	client := newTestService(t)
	ctx := context.Background()

	t.Run("wrong token", func(t *testing.T) {
		_, err := client.Bootstrap(ctx, "wrong-token", authsdk.CreateUserRequest{
			Username: "fleet.admin", Password: "pw",
		})
		require.ErrorIs(t, err, authsdk.ErrInvalidToken)
	})

	t.Run("missing token header", func(t *testing.T) {
		_, err := client.Bootstrap(ctx, "", authsdk.CreateUserRequest{
			Username: "fleet.admin", Password: "pw",
		})
		require.ErrorIs(t, err, authsdk.ErrInvalidToken)
	})
}

func TestHealthEndpoints(t *testing.T) {
	client := newTestService(t)
	ctx := context.Background()

	live, err := client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Nil(t, live.Checks)

	ready, err := client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Signer)
}
