package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/apufleet/fleetauth/internal/auth/domain"
	"github.com/apufleet/fleetauth/internal/auth/service"
	"github.com/apufleet/fleetauth/pkg/authsdk"
	"github.com/apufleet/fleetauth/pkg/httpx"
	"github.com/apufleet/fleetauth/pkg/jwtx"
	"github.com/apufleet/fleetauth/pkg/slogx"
)

type SessionHandler struct {
	AccountService *service.AccountService
	Signer         *jwtx.Signer
}

// ServeHTTP handles sign-in. It verifies the credentials, mints a
// bearer token and returns it with the principal. Failure responses
// carry the message the dashboard displays.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	principal, err := h.AccountService.Authenticate(ctx, username, req.Password)
	if err != nil {
		writeAuthenticateError(w, log, username, err)
		return
	}

	token, expiresAt, err := h.Signer.Sign(principal.ID, principal.Username, principal.Role.String())
	if err != nil {
		log.Error("failed to sign access token", "user_id", principal.ID, "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.SignInResponse{
		Principal:   principalResponse(principal),
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(time.Until(expiresAt).Seconds()),
	})
}

func writeAuthenticateError(w http.ResponseWriter, log *slog.Logger, username string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		authsdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrMalformedRecord):
		log.Warn("sign-in hit malformed credential record", "username", username)
		authsdk.ErrMalformedRecord.WriteError(w)
	default:
		log.Warn("sign-in failed", "username", username, "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

// principalResponse maps a domain principal onto the wire shape,
// including the normalized routing role.
func principalResponse(p domain.Principal) authsdk.Principal {
	return authsdk.Principal{
		ID:       p.ID,
		Name:     p.DisplayName,
		Username: p.Username,
		Role:     p.Role.String(),
		UserRole: p.NormalizedRole().String(),
	}
}
