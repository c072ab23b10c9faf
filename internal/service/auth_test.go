package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixlab/api-core/internal/apierror"
	"github.com/fixlab/api-core/internal/catalog"
	"github.com/fixlab/api-core/internal/store"
)

func newService(t *testing.T, expiryHours int) *AuthService {
	t.Helper()
	return NewAuthService(store.NewMemoryStore(), nil, zap.NewNop(), "test-secret", expiryHours)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, 24)

	principal, key, err := svc.Register(ctx, "alice@x.com", "password123", "Acme", "")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(key, "fx_"))
	require.Equal(t, "starter", principal.Tier)
	require.Equal(t, "user", principal.Role)
	require.NotEqual(t, key, principal.APIKeyHash)

	// Duplicate registration conflicts.
	_, _, err = svc.Register(ctx, "alice@x.com", "password123", "", "")
	apiErr := apierror.From(err)
	require.NotNil(t, apiErr)
	require.Equal(t, http.StatusConflict, apiErr.Status())
}

func TestAuthService_Register_UnknownTier(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, 24)

	_, _, err := svc.Register(ctx, "alice@x.com", "password123", "", catalog.TierID("gold"))
	apiErr := apierror.From(err)
	require.NotNil(t, apiErr)
	require.Equal(t, http.StatusPaymentRequired, apiErr.Status())
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, 24)

	principal, _, err := svc.Register(ctx, "alice@x.com", "password123", "", "")
	require.NoError(t, err)

	token, loggedIn, err := svc.Login(ctx, "alice@x.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, principal.ID, loggedIn.ID)

	// Wrong password and unknown email both fail the same way.
	_, _, err = svc.Login(ctx, "alice@x.com", "wrong")
	require.NotNil(t, apierror.From(err))
	require.Equal(t, http.StatusUnauthorized, apierror.From(err).Status())

	_, _, err = svc.Login(ctx, "nobody@x.com", "password123")
	require.NotNil(t, apierror.From(err))
}

func TestAuthService_ResolveAPIKey(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, 24)

	principal, key, err := svc.Register(ctx, "alice@x.com", "password123", "", "")
	require.NoError(t, err)

	resolved, err := svc.ResolveAPIKey(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	require.Equal(t, principal.ID, resolved.ID)

	unknown, err := svc.ResolveAPIKey(ctx, "fx_forged")
	require.NoError(t, err)
	require.Nil(t, unknown)
}

func TestAuthService_ResolveToken(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, 24)

	principal, _, err := svc.Register(ctx, "alice@x.com", "password123", "", "")
	require.NoError(t, err)

	token, _, err := svc.Login(ctx, "alice@x.com", "password123")
	require.NoError(t, err)

	resolved, err := svc.ResolveToken(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	require.Equal(t, principal.ID, resolved.ID)

	forged, err := svc.ResolveToken(ctx, token+"tampered")
	require.NoError(t, err)
	require.Nil(t, forged)
}

func TestAuthService_ResolveToken_Expired(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, -1) // tokens are born expired

	_, _, err := svc.Register(ctx, "alice@x.com", "password123", "", "")
	require.NoError(t, err)

	token, _, err := svc.Login(ctx, "alice@x.com", "password123")
	require.NoError(t, err)

	resolved, err := svc.ResolveToken(ctx, token)
	require.NoError(t, err)
	require.Nil(t, resolved)
}
