package oauth2_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authcore/internal/oauth2"
)

func TestClientAuth_Authenticate(t *testing.T) {
	ctx := context.Background()
	st, svcs := newFixture(t)
	seedConfidential(t, st)
	seedPublic(t, st)

	t.Run("confidential with secret", func(t *testing.T) {
		c, err := svcs.ClientAuth.Authenticate(ctx, "c1", testSecret)
		require.NoError(t, err)
		require.Equal(t, "c1", c.ClientID)
	})

	t.Run("confidential wrong secret", func(t *testing.T) {
		_, err := svcs.ClientAuth.Authenticate(ctx, "c1", "nope")
		require.ErrorIs(t, err, oauth2.ErrInvalidClient)
	})

	t.Run("public without secret", func(t *testing.T) {
		c, err := svcs.ClientAuth.Authenticate(ctx, "p1", "")
		require.NoError(t, err)
		require.Equal(t, "p1", c.ClientID)
	})

	t.Run("secret against public client", func(t *testing.T) {
		_, err := svcs.ClientAuth.Authenticate(ctx, "p1", "anything")
		require.ErrorIs(t, err, oauth2.ErrInvalidClient)
	})

	t.Run("empty client_id", func(t *testing.T) {
		_, err := svcs.ClientAuth.Authenticate(ctx, "", "")
		require.ErrorIs(t, err, oauth2.ErrInvalidClient)
	})

	t.Run("unknown client", func(t *testing.T) {
		_, err := svcs.ClientAuth.Authenticate(ctx, "ghost", "")
		require.ErrorIs(t, err, oauth2.ErrInvalidClient)
	})
}

func TestClientAuth_CheckGrantType(t *testing.T) {
	st, svcs := newFixture(t)
	c := seedConfidential(t, st)

	require.True(t, svcs.ClientAuth.CheckGrantType(c, "authorization_code"))
	require.True(t, svcs.ClientAuth.CheckGrantType(c, "AUTHORIZATION_CODE"), "case-insensitive")
	require.False(t, svcs.ClientAuth.CheckGrantType(c, "password"))
}

func TestErrorCode_Mapping(t *testing.T) {
	require.Equal(t, "invalid_grant", oauth2.ErrorCode(oauth2.ErrInvalidGrant))
	require.Equal(t, "access_denied", oauth2.ErrorCode(oauth2.ErrAccessDenied))
	// Errores no mapeados colapsan a server_error.
	require.Equal(t, "server_error", oauth2.ErrorCode(context.DeadlineExceeded))
	require.Equal(t, "server_error", oauth2.ErrorCode(oauth2.ErrServerError))
}
