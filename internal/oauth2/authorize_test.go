package oauth2_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
	"github.com/dropDatabas3/authcore/internal/oauth2"
)

func validAuthReq(clientID string) oauth2.AuthorizeRequest {
	return oauth2.AuthorizeRequest{
		ResponseType: "code",
		ClientID:     clientID,
		RedirectURI:  testRedirect,
		Scope:        "user:read",
		State:        "xyz",
		UserID:       "u1",
	}
}

func TestAuthorize_ConsentFlow(t *testing.T) {
	ctx := context.Background()
	st, svcs := newFixture(t)
	seedConfidential(t, st)

	req := validAuthReq("c1")

	// Primera vez: sin consent registrado => prompt.
	res, err := svcs.Authorize.Authorize(ctx, req)
	require.NoError(t, err)
	require.Equal(t, oauth2.AuthResultConsentRequired, res.Type)
	require.NotNil(t, res.Consent)
	require.Equal(t, "c1", res.Consent.ClientID)
	require.Equal(t, "Test App", res.Consent.ClientName)
	require.Equal(t, "user:read", res.Consent.Scope)

	// Approve registra el consent y emite el code.
	res, err = svcs.Authorize.Approve(ctx, req)
	require.NoError(t, err)
	require.Equal(t, oauth2.AuthResultRedirect, res.Type)
	require.True(t, strings.HasPrefix(res.RedirectURL, testRedirect))
	require.NotEmpty(t, queryParam(t, res.RedirectURL, "code"))
	require.Equal(t, "xyz", queryParam(t, res.RedirectURL, "state"))

	// Segunda vez con el mismo scope: el consent cubre, no hay prompt.
	res, err = svcs.Authorize.Authorize(ctx, req)
	require.NoError(t, err)
	require.Equal(t, oauth2.AuthResultRedirect, res.Type)
	require.NotEmpty(t, queryParam(t, res.RedirectURL, "code"))
}

func TestAuthorize_NarrowerScopeDoesNotReprompt(t *testing.T) {
	ctx := context.Background()
	st, svcs := newFixture(t)
	seedConfidential(t, st)

	wide := validAuthReq("c1")
	wide.Scope = "user:read user:write"
	_, err := svcs.Authorize.Approve(ctx, wide)
	require.NoError(t, err)

	narrow := validAuthReq("c1")
	narrow.Scope = "user:read"
	res, err := svcs.Authorize.Authorize(ctx, narrow)
	require.NoError(t, err)
	require.Equal(t, oauth2.AuthResultRedirect, res.Type)
}

func TestAuthorize_WiderScopeReprompts(t *testing.T) {
	ctx := context.Background()
	st, svcs := newFixture(t)
	seedConfidential(t, st)

	narrow := validAuthReq("c1")
	_, err := svcs.Authorize.Approve(ctx, narrow)
	require.NoError(t, err)

	wide := validAuthReq("c1")
	wide.Scope = "user:read user:write"
	res, err := svcs.Authorize.Authorize(ctx, wide)
	require.NoError(t, err)
	require.Equal(t, oauth2.AuthResultConsentRequired, res.Type)
}

func TestAuthorize_Deny(t *testing.T) {
	ctx := context.Background()
	st, svcs := newFixture(t)
	seedConfidential(t, st)

	res, err := svcs.Authorize.Deny(ctx, validAuthReq("c1"))
	require.NoError(t, err)
	require.Equal(t, oauth2.AuthResultRedirect, res.Type)
	require.Equal(t, "access_denied", queryParam(t, res.RedirectURL, "error"))
	require.Equal(t, "xyz", queryParam(t, res.RedirectURL, "state"))
	require.Empty(t, queryParam(t, res.RedirectURL, "code"))

	// Deny no registra consent: la próxima vez vuelve el prompt.
	again, err := svcs.Authorize.Authorize(ctx, validAuthReq("c1"))
	require.NoError(t, err)
	require.Equal(t, oauth2.AuthResultConsentRequired, again.Type)
}

// Fallas con client y redirect válidos viajan como error redirect; con
// client desconocido o redirect no registrada, como error directo.
func TestAuthorize_ValidationFailures(t *testing.T) {
	ctx := context.Background()
	st, svcs := newFixture(t)
	seedConfidential(t, st)

	t.Run("unsupported response_type", func(t *testing.T) {
		req := validAuthReq("c1")
		req.ResponseType = "token"
		res, err := svcs.Authorize.Authorize(ctx, req)
		require.NoError(t, err)
		require.Equal(t, oauth2.AuthResultRedirect, res.Type)
		require.Equal(t, "unsupported_response_type", queryParam(t, res.RedirectURL, "error"))
	})

	t.Run("unknown client", func(t *testing.T) {
		req := validAuthReq("ghost")
		res, err := svcs.Authorize.Authorize(ctx, req)
		require.NoError(t, err)
		require.Equal(t, oauth2.AuthResultError, res.Type)
		require.Equal(t, "invalid_client", res.ErrorCode)
	})

	t.Run("unregistered redirect_uri never redirects", func(t *testing.T) {
		req := validAuthReq("c1")
		req.RedirectURI = "https://evil.example.com/cb"
		res, err := svcs.Authorize.Authorize(ctx, req)
		require.NoError(t, err)
		require.Equal(t, oauth2.AuthResultError, res.Type)
		require.Equal(t, "invalid_request", res.ErrorCode)
	})

	t.Run("empty redirect_uri", func(t *testing.T) {
		req := validAuthReq("c1")
		req.RedirectURI = ""
		res, err := svcs.Authorize.Authorize(ctx, req)
		require.NoError(t, err)
		require.Equal(t, oauth2.AuthResultError, res.Type)
		require.Equal(t, "invalid_request", res.ErrorCode)
	})

	t.Run("scope outside client allowance", func(t *testing.T) {
		req := validAuthReq("c1")
		req.Scope = "admin:all"
		res, err := svcs.Authorize.Authorize(ctx, req)
		require.NoError(t, err)
		require.Equal(t, oauth2.AuthResultRedirect, res.Type)
		require.Equal(t, "invalid_scope", queryParam(t, res.RedirectURL, "error"))
	})

	t.Run("missing state", func(t *testing.T) {
		req := validAuthReq("c1")
		req.State = ""
		res, err := svcs.Authorize.Authorize(ctx, req)
		require.NoError(t, err)
		require.Equal(t, oauth2.AuthResultRedirect, res.Type)
		require.Equal(t, "invalid_request", queryParam(t, res.RedirectURL, "error"))
	})

	t.Run("unknown challenge method", func(t *testing.T) {
		req := validAuthReq("c1")
		req.CodeChallenge = challengeS256("v")
		req.CodeChallengeMethod = "S512"
		res, err := svcs.Authorize.Authorize(ctx, req)
		require.NoError(t, err)
		require.Equal(t, oauth2.AuthResultRedirect, res.Type)
		require.Equal(t, "invalid_request", queryParam(t, res.RedirectURL, "error"))
	})
}

func TestAuthorize_GrantNotAllowed(t *testing.T) {
	ctx := context.Background()
	st, svcs := newFixture(t)

	seedConfidentialWith(t, st, func(c *repository.Client) {
		c.GrantTypes = []string{"client_credentials"}
	})

	res, err := svcs.Authorize.Authorize(ctx, validAuthReq("c1"))
	require.NoError(t, err)
	require.Equal(t, oauth2.AuthResultRedirect, res.Type)
	require.Equal(t, "unauthorized_client", queryParam(t, res.RedirectURL, "error"))
}

// Sin scope en el request, aplica el scope default del client completo.
func TestAuthorize_DefaultScope(t *testing.T) {
	ctx := context.Background()
	st, svcs := newFixture(t)
	seedConfidential(t, st)

	req := validAuthReq("c1")
	req.Scope = ""
	res, err := svcs.Authorize.Authorize(ctx, req)
	require.NoError(t, err)
	require.Equal(t, oauth2.AuthResultConsentRequired, res.Type)
	require.Equal(t, "user:read user:write", res.Consent.Scope)
}
