package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/apufleet/fleetauth/internal/auth/service"
	"github.com/apufleet/fleetauth/pkg/authsdk"
	"github.com/apufleet/fleetauth/pkg/httpx"
	"github.com/apufleet/fleetauth/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP creates the first admin account on a fresh deployment. The
// endpoint requires the pre-shared token and goes dead permanently once
// any account exists.
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	// 404 when no token is configured: the endpoint does not exist on
	// deployments that never enabled bootstrap.
	if h.BootstrapService.Token == "" {
		httpx.WriteJSON(w, http.StatusNotFound, map[string]string{
			"error":             "not_found",
			"error_description": "bootstrap is not enabled",
		})
		return
	}

	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

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

	principal, err := h.BootstrapService.Bootstrap(ctx, token, service.CreateAccountRequest{
		Name:     strings.TrimSpace(req.Name),
		Username: username,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapAlready):
			authsdk.ErrAlreadyBootstrapped.WriteError(w)
		case errors.Is(err, service.ErrBootstrapUnauthorized):
			authsdk.ErrInvalidToken.WriteError(w)
		case errors.Is(err, service.ErrUsernameTaken):
			authsdk.ErrConflict.WriteError(w)
		default:
			log.Error("bootstrap failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	log.Info("bootstrap created admin account", "admin_id", principal.ID)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, principalResponse(principal))
}
