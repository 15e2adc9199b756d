package auth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	httpapi "github.com/apufleet/fleetauth/internal/auth/http"
	"github.com/apufleet/fleetauth/internal/auth/service"
	"github.com/apufleet/fleetauth/internal/auth/store/drivers/badger"
	"github.com/apufleet/fleetauth/pkg/authsdk"
	"github.com/apufleet/fleetauth/pkg/jwtx"
)

/*
 * Common constants and helper functions for end-to-end tests. Each test
 * gets a full service instance: Badger-backed store, real signer, the
 * production router, served over httptest.
 */

const (
	bootstrapToken = "test-bootstrap-token-12345"
	adminUsername  = "fleet.admin"
	adminName      = "Fleet Administrator"
	adminPassword  = "Admin123!"
)

// setupService starts a complete in-process service over a fresh Badger
// store and returns an SDK client pointed at it.
func setupService(t *testing.T) *authsdk.Client {
	t.Helper()

	st, err := badger.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSigner("https://auth.e2e.test", jwtx.DefaultAccessTokenTTL)
	require.NoError(t, err)

	accounts := &service.AccountService{Store: st, SideEffectTimeout: time.Second}

	router := httpapi.NewRouter(signer, "e2e", st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	router.AccountService = accounts
	router.BootstrapService = &service.BootstrapService{Accounts: accounts, Token: bootstrapToken}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return authsdk.NewClient(srv.URL)
}

// bootstrapService creates the first admin account.
func bootstrapService(t *testing.T, client *authsdk.Client) *authsdk.Principal {
	t.Helper()

	p, err := client.Bootstrap(context.Background(), bootstrapToken, authsdk.CreateUserRequest{
		Name:     adminName,
		Username: adminUsername,
		Password: adminPassword,
	})
	require.NoError(t, err)
	return p
}

// signInAsAdmin signs the client in as the bootstrapped admin account.
func signInAsAdmin(t *testing.T, client *authsdk.Client) *authsdk.SignInResponse {
	t.Helper()

	resp, err := client.SignIn(context.Background(), adminUsername, adminPassword)
	require.NoError(t, err)
	return resp
}
