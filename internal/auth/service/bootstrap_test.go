package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/bookit/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestBootstrap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)
	svc := &BootstrapService{Store: h.store, Now: h.clock.Now}

	ok, err := svc.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = svc.Bootstrap(ctx, "not-an-email", "pw")
	require.ErrorIs(t, err, ErrInvalidInput)

	id, err := svc.Bootstrap(ctx, " Admin@X.com ", "S3cret")
	require.NoError(t, err)

	a := h.account(t, id)
	require.Equal(t, "admin@x.com", a.Email)
	require.Equal(t, domain.RoleAdmin, a.Role)
	require.True(t, a.Verified)

	ok, err = svc.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.Bootstrap(ctx, "other@x.com", "pw")
	require.ErrorIs(t, err, ErrBootstrapAlready)

	res := login(t, h, domain.LoginRequest{Email: "admin@x.com", Password: "S3cret"})
	require.Equal(t, domain.LoginAuthenticated, res.Outcome)
}
