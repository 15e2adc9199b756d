package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Client talks to the fleetauth service. The zero value is not usable;
// use NewClient.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu          sync.RWMutex
	accessToken string
}

// NewClient returns a Client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SignIn verifies a username/password pair with the service. On success
// it stores the returned bearer token for subsequent authenticated
// calls and returns the full response.
func (c *Client) SignIn(ctx context.Context, username, password string) (*SignInResponse, error) {
	var resp SignInResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/session",
		SignInRequest{Username: username, Password: password}, &resp, false)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.accessToken = resp.AccessToken
	c.mu.Unlock()

	return &resp, nil
}

// Authenticate implements session.Authenticator: it runs SignIn and
// returns just the Principal.
func (c *Client) Authenticate(ctx context.Context, username, password string) (Principal, error) {
	resp, err := c.SignIn(ctx, username, password)
	if err != nil {
		return Principal{}, err
	}
	return resp.Principal, nil
}

// SignOut drops the client's bearer token. The service keeps no session
// state, so this is purely local.
func (c *Client) SignOut() {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
}

// GetUserInfo returns the principal for the current bearer token.
func (c *Client) GetUserInfo(ctx context.Context) (*UserInfoResponse, error) {
	var resp UserInfoResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/userinfo", nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateUser creates an account. Requires a bearer token with the
// admin role.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*Principal, error) {
	var resp Principal
	if err := c.doJSON(ctx, http.MethodPost, "/v1/users", req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Bootstrap creates the first admin account on a fresh deployment,
// authorized by the pre-shared bootstrap token.
func (c *Client) Bootstrap(ctx context.Context, token string, req CreateUserRequest) (*Principal, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/bootstrap", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Bootstrap-Token", token)

	var resp Principal
	if err := c.send(httpReq, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetLiveness returns the service's liveness report.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/livez", nil, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetReadiness returns the service's readiness report, including the
// store and signer checks.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/readyz", nil, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, authed bool) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		c.mu.RLock()
		token := c.accessToken
		c.mu.RUnlock()
		if token == "" {
			return ErrInvalidToken
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
