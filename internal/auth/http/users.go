package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/apufleet/fleetauth/internal/auth/domain"
	"github.com/apufleet/fleetauth/internal/auth/service"
	"github.com/apufleet/fleetauth/pkg/authsdk"
	"github.com/apufleet/fleetauth/pkg/httpx"
	"github.com/apufleet/fleetauth/pkg/slogx"
)

type CreateUserHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP creates an account. The route is guarded by authn and the
// admin role check before this handler runs.
func (h *CreateUserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	principal, err := h.AccountService.CreateAccount(ctx, service.CreateAccountRequest{
		Name:     strings.TrimSpace(req.Name),
		Username: username,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			authsdk.ErrInvalidRequest.WriteError(w)
		case errors.Is(err, service.ErrUsernameTaken):
			authsdk.ErrConflict.WriteError(w)
		default:
			log.Error("failed to create account", "username", username, "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, principalResponse(principal))
}
