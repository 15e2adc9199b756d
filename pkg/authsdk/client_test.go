package authsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestSignInStoresToken(t *testing.T) {
	t.Parallel()

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/session", r.URL.Path)

		var req SignInRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "j.doe", req.Username)
		require.Equal(t, "hunter2", req.Password)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SignInResponse{
			Principal: Principal{
				ID:       "j_doe",
				Name:     "Jane Doe",
				Username: "j.doe",
				Role:     "inspector",
				UserRole: "inspector",
			},
			AccessToken: "test-token",
			TokenType:   "Bearer",
			ExpiresIn:   3600,
		})
	})

	resp, err := client.SignIn(context.Background(), "j.doe", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "inspector", resp.Principal.UserRole)
	require.Equal(t, "test-token", resp.AccessToken)

	client.mu.RLock()
	defer client.mu.RUnlock()
	require.Equal(t, "test-token", client.accessToken)
}

func TestSignInInvalidPassword(t *testing.T) {
	t.Parallel()

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		ErrInvalidCredentials.WriteError(w)
	})

	_, err := client.SignIn(context.Background(), "j.doe", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Invalid password", apiErr.Description)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestAuthenticateReturnsPrincipal(t *testing.T) {
	t.Parallel()

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(SignInResponse{
			Principal:   Principal{ID: "m_smith", Username: "m.smith", Role: "user", UserRole: "admin"},
			AccessToken: "tok",
			TokenType:   "Bearer",
		})
	})

	p, err := client.Authenticate(context.Background(), "m.smith", "pw")
	require.NoError(t, err)
	require.Equal(t, "m_smith", p.ID)
	require.Equal(t, "admin", p.UserRole)
}

func TestGetUserInfoSendsBearer(t *testing.T) {
	t.Parallel()

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/session":
			_ = json.NewEncoder(w).Encode(SignInResponse{
				Principal:   Principal{ID: "j_doe", Username: "j.doe"},
				AccessToken: "bearer-1",
			})
		case "/v1/userinfo":
			require.Equal(t, "Bearer bearer-1", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(UserInfoResponse{
				Principal: Principal{ID: "j_doe", Username: "j.doe", Role: "inspector"},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	_, err := client.SignIn(context.Background(), "j.doe", "pw")
	require.NoError(t, err)

	info, err := client.GetUserInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, "j_doe", info.Principal.ID)
}

func TestGetUserInfoWithoutToken(t *testing.T) {
	t.Parallel()

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	})

	_, err := client.GetUserInfo(context.Background())
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignOutDropsToken(t *testing.T) {
	t.Parallel()

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(SignInResponse{AccessToken: "tok"})
	})

	_, err := client.SignIn(context.Background(), "u", "p")
	require.NoError(t, err)

	client.SignOut()

	_, err = client.GetUserInfo(context.Background())
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestBootstrapSendsTokenHeader(t *testing.T) {
	t.Parallel()

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/bootstrap", r.URL.Path)
		require.Equal(t, "seed-token", r.Header.Get("X-Bootstrap-Token"))

		var req CreateUserRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "ops.admin", req.Username)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Principal{ID: "ops_admin", Username: "ops.admin", Role: "admin"})
	})

	p, err := client.Bootstrap(context.Background(), "seed-token", CreateUserRequest{
		Name:     "Ops Admin",
		Username: "ops.admin",
		Password: "pw",
		Role:     "admin",
	})
	require.NoError(t, err)
	require.Equal(t, "ops_admin", p.ID)
}

func TestParseAPIErrorGarbageBody(t *testing.T) {
	t.Parallel()

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream error</html>"))
	})

	_, err := client.SignIn(context.Background(), "u", "p")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, ErrorCodeServerError, apiErr.Code)
}
