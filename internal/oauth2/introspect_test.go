package oauth2_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
	"github.com/dropDatabas3/authcore/internal/oauth2"
	tokens "github.com/dropDatabas3/authcore/internal/security/token"
)

func TestIntrospect_ActiveToken(t *testing.T) {
	ctx := context.Background()
	st, svcs := newFixture(t)
	seedConfidential(t, st)

	pair := issuePair(t, svcs)

	res, err := svcs.Introspect.Introspect(ctx, pair.AccessToken, "c1")
	require.NoError(t, err)
	require.True(t, res.Active)
	require.Equal(t, "c1", res.ClientID)
	require.Equal(t, "c1", res.Aud)
	require.Equal(t, "u1", res.Sub)
	require.Equal(t, "user:read", res.Scope)
	require.Equal(t, "Bearer", res.TokenType)
	require.Equal(t, testIssuer, res.Iss)
	require.Greater(t, res.Exp, time.Now().Unix())
	require.LessOrEqual(t, res.Iat, time.Now().Unix())

	// jti es un identificador derivado, nunca el token en sí.
	require.NotEmpty(t, res.Jti)
	require.NotEqual(t, pair.AccessToken, res.Jti)
	require.NotContains(t, pair.AccessToken, res.Jti)
}

func TestIntrospect_InactiveCases(t *testing.T) {
	ctx := context.Background()
	st, svcs := newFixture(t)
	seedConfidential(t, st)
	seedPublic(t, st)

	pair := issuePair(t, svcs)

	t.Run("empty token", func(t *testing.T) {
		res, err := svcs.Introspect.Introspect(ctx, "", "c1")
		require.NoError(t, err)
		require.False(t, res.Active)
		require.Empty(t, res.Scope)
	})

	t.Run("unknown token", func(t *testing.T) {
		res, err := svcs.Introspect.Introspect(ctx, "no-such-token", "c1")
		require.NoError(t, err)
		require.False(t, res.Active)
	})

	t.Run("foreign client learns nothing", func(t *testing.T) {
		res, err := svcs.Introspect.Introspect(ctx, pair.AccessToken, "p1")
		require.NoError(t, err)
		require.False(t, res.Active)
		require.Empty(t, res.Sub)
		require.Empty(t, res.Scope)
	})

	t.Run("expired token still in store", func(t *testing.T) {
		raw, err := tokens.GenerateOpaqueToken(32)
		require.NoError(t, err)
		require.NoError(t, st.CreateAccessToken(ctx, &repository.AccessToken{
			Token:     raw,
			ClientID:  "c1",
			UserID:    "u1",
			Scope:     "user:read",
			ExpiresAt: pastExpiry(),
		}))

		res, err := svcs.Introspect.Introspect(ctx, raw, "c1")
		require.NoError(t, err)
		require.False(t, res.Active)
	})

	t.Run("revoked token", func(t *testing.T) {
		require.NoError(t, svcs.Revoke.Revoke(ctx, oauth2.RevokeRequest{
			Token:    pair.AccessToken,
			ClientID: "c1",
		}))
		res, err := svcs.Introspect.Introspect(ctx, pair.AccessToken, "c1")
		require.NoError(t, err)
		require.False(t, res.Active)
	})
}
