package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/apufleet/fleetauth/internal/auth/domain"
	"github.com/apufleet/fleetauth/pkg/slogx"
)

var (
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
)

// BootstrapService creates the first admin account on an empty store,
// gated by a pre-shared token. Once any credential exists the endpoint
// is dead.
type BootstrapService struct {
	Accounts *AccountService
	Token    string // Pre-configured bootstrap token
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Accounts.Store.Credentials().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

func (s *BootstrapService) Bootstrap(ctx context.Context, token string, req CreateAccountRequest) (domain.Principal, error) {
	l := slogx.FromContext(ctx)

	if bootstrapped, err := s.IsBootstrapped(ctx); err != nil {
		return domain.Principal{}, ErrStoreUnavailable
	} else if bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return domain.Principal{}, ErrBootstrapAlready
	}

	if s.Token == "" || token != s.Token {
		l.Warn("unauthorized bootstrap attempt")
		return domain.Principal{}, ErrBootstrapUnauthorized
	}

	// The first account is always an admin; everything else is created
	// through the admin endpoint afterwards.
	req.Role = domain.RoleAdmin

	principal, err := s.Accounts.CreateAccount(ctx, req)
	if err != nil {
		l.Error("bootstrap failed to create admin", slog.Any("err", err))
		return domain.Principal{}, err
	}

	l.Info("system bootstrapped", slog.String("admin_id", principal.ID))
	return principal, nil
}
