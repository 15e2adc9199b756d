package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/apufleet/fleetauth/internal/auth/domain"
	"github.com/apufleet/fleetauth/internal/auth/store"
	"github.com/apufleet/fleetauth/pkg/cryptox"
	"github.com/apufleet/fleetauth/pkg/slogx"
)

// AccountService owns credential verification and account creation.
// All password work happens here, server-side; clients never submit or
// compare digests themselves.
type AccountService struct {
	Store store.Store

	// SideEffectTimeout bounds the fire-and-forget writes issued after
	// a successful verification (last-login stamp, hash upgrade).
	// Zero means DefaultSideEffectTimeout.
	SideEffectTimeout time.Duration
}

const DefaultSideEffectTimeout = 5 * time.Second

// Authenticate verifies a username/password pair and returns the
// matching Principal.
//
// Lookup is two-step: the normalized id derived from the username is
// tried first, then a username-equality query. Records predating the id
// normalization are only reachable through the fallback.
//
// On success the last-login stamp, and the Argon2id upgrade for legacy
// digests, are issued in the background; their failures are logged and
// never surfaced. The authorization decision is already final by then.
//
// Error mapping: ErrNotFound (no record), ErrMalformedRecord (record
// without a password hash), ErrInvalidCredentials (mismatch),
// ErrStoreUnavailable (store call rejected).
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (domain.Principal, error) {
	log := slogx.FromContext(ctx)

	id := domain.NormalizeID(username)

	cred, err := s.Store.Credentials().GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		// Fallback: the record may be keyed differently than the
		// current derivation produces.
		cred, err = s.Store.Credentials().GetByUsername(ctx, username)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Principal{}, ErrNotFound
		}
		log.Error("credential lookup failed", slog.String("username", username), slog.Any("err", err))
		return domain.Principal{}, ErrStoreUnavailable
	}

	if strings.TrimSpace(cred.PasswordHash) == "" {
		return domain.Principal{}, ErrMalformedRecord
	}

	if err := cryptox.VerifyCredential(password, cred.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.Principal{}, ErrInvalidCredentials
		}
		// Undecodable stored hash; the record is broken, not the caller.
		log.Warn("stored credential hash is unreadable", slog.String("id", cred.ID), slog.Any("err", err))
		return domain.Principal{}, ErrMalformedRecord
	}

	s.afterSignIn(cred, password)

	return cred.Principal(), nil
}

// afterSignIn runs the best-effort post-verification writes. It
// deliberately detaches from the request context so a caller hanging up
// cannot cancel the stamp.
func (s *AccountService) afterSignIn(cred domain.Credential, password string) {
	timeout := s.SideEffectTimeout
	if timeout <= 0 {
		timeout = DefaultSideEffectTimeout
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := s.Store.Credentials().TouchLastLogin(ctx, cred.ID, time.Now()); err != nil {
			slog.Warn("failed to stamp last login", slog.String("id", cred.ID), slog.Any("err", err))
		}

		if cryptox.NeedsRehash(cred.PasswordHash) {
			newHash, err := cryptox.HashPassword(password)
			if err == nil {
				err = s.Store.Credentials().UpdatePasswordHash(ctx, cred.ID, newHash)
			}
			if err != nil {
				slog.Warn("failed to upgrade legacy digest", slog.String("id", cred.ID), slog.Any("err", err))
			}
		}
	}()
}

// GetAccount returns the Principal for a credential id.
func (s *AccountService) GetAccount(ctx context.Context, id string) (domain.Principal, error) {
	cred, err := s.Store.Credentials().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Principal{}, ErrNotFound
		}
		return domain.Principal{}, ErrStoreUnavailable
	}
	return cred.Principal(), nil
}

// CreateAccountRequest carries the inputs for account creation. The
// password arrives in plaintext and is digested before storage.
type CreateAccountRequest struct {
	Name     string
	Username string
	Password string
	Role     domain.Role
}

// CreateAccount creates a credential record keyed by the normalized id
// and returns the Principal (never the hash). The derived id is
// collision-prone for usernames that differ only in non-alphanumeric
// characters; creation fails fast on the conflict rather than
// overwriting.
func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (domain.Principal, error) {
	log := slogx.FromContext(ctx)

	if !req.Role.Valid() {
		return domain.Principal{}, ErrInvalidRole
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return domain.Principal{}, ErrMalformedRecord
	}

	cred := domain.Credential{
		ID:           domain.NormalizeID(req.Username),
		Name:         req.Name,
		Username:     req.Username,
		PasswordHash: cryptox.Digest(req.Password),
		Role:         req.Role,
	}

	if err := s.Store.Credentials().Create(ctx, cred); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Principal{}, ErrUsernameTaken
		}
		log.Error("failed to create credential", slog.String("id", cred.ID), slog.Any("err", err))
		return domain.Principal{}, ErrStoreUnavailable
	}

	log.Info("account created",
		slog.String("id", cred.ID),
		slog.String("role", cred.Role.String()),
	)
	return cred.Principal(), nil
}
