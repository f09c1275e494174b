package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/aussiebroadwan/bookit/internal/auth/domain"
	"github.com/aussiebroadwan/bookit/internal/auth/store"
	"github.com/aussiebroadwan/bookit/pkg/cryptox"
	"github.com/aussiebroadwan/bookit/pkg/idx"
	"github.com/aussiebroadwan/bookit/pkg/slogx"
)

var (
	ErrBootstrapAlready             = errors.New("system already bootstrapped")
	ErrBootstrapFailedToCreateAdmin = errors.New("failed to create admin account")
)

// BootstrapService creates the first admin account on an empty database.
type BootstrapService struct {
	Store store.Store
	Now   func() time.Time
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Accounts().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap creates a verified admin account. It refuses once any account
// exists.
func (s *BootstrapService) Bootstrap(ctx context.Context, email, password string) (string, error) {
	l := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || password == "" {
		return "", ErrInvalidInput
	}

	if bootstrapped, err := s.IsBootstrapped(ctx); err != nil {
		return "", err
	} else if bootstrapped {
		l.Debug("skipping bootstrap on already-bootstrapped system")
		return "", ErrBootstrapAlready
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return "", ErrBootstrapFailedToCreateAdmin
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	id := idx.New().String()
	err = s.Store.Accounts().CreateAccount(ctx, domain.Account{
		ID:                id,
		Email:             email,
		FullName:          "Administrator",
		Role:              domain.RoleAdmin,
		PasswordHash:      hash,
		PasswordUpdatedAt: now,
		Verified:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		l.Error("failed to create admin account", slog.String("admin_id", id), slog.Any("error", err))
		return "", ErrBootstrapFailedToCreateAdmin
	}

	l.Info("successfully bootstrapped admin account", slog.String("admin_id", id))
	return id, nil
}
