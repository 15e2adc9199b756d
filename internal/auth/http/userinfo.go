package http

import (
	"errors"
	"net/http"

	"github.com/apufleet/fleetauth/internal/auth/service"
	"github.com/apufleet/fleetauth/pkg/authsdk"
	"github.com/apufleet/fleetauth/pkg/httpx"
	"github.com/apufleet/fleetauth/pkg/slogx"
)

type UserInfoHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP returns the principal for the authenticated bearer token.
func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromCtx(ctx)
	if userID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	principal, err := h.AccountService.GetAccount(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			// The account was removed after the token was minted.
			authsdk.ErrInvalidToken.WriteError(w)
			return
		}
		log.Warn("failed to load account", "user_id", userID, "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.UserInfoResponse{
		Principal: principalResponse(principal),
	})
}
