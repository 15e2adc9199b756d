package authsdk

// Principal is the authenticated identity as the dashboard sees it.
// The JSON field names match the records the legacy dashboard persisted,
// so an existing "currentUser" blob still parses.
type Principal struct {
	// ID is the stable record id derived from the username.
	ID string `json:"id"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// Username is the unique login handle.
	Username string `json:"username"`

	// Role is the stored account role: "admin", "user" or "inspector".
	Role string `json:"role"`

	// UserRole is the normalized routing classification: "inspector"
	// or "admin". Any stored role other than "inspector" normalizes to
	// "admin".
	UserRole string `json:"userRole,omitempty"`
}

// NormalizeRole collapses a stored role to the routing classification.
func NormalizeRole(role string) string {
	if role == "inspector" {
		return "inspector"
	}
	return "admin"
}

// SignInRequest is the body for POST /v1/session.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignInResponse is returned on successful sign-in.
type SignInResponse struct {
	Principal Principal `json:"principal"`

	// AccessToken is the bearer token for subsequent API calls.
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int `json:"expires_in"`
}

// CreateUserRequest is the body for POST /v1/users (admin only) and
// POST /v1/bootstrap.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserInfoResponse is returned from GET /v1/userinfo.
type UserInfoResponse struct {
	Principal Principal `json:"principal"`
}

// HealthResponse is returned from the livez and readyz endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}
