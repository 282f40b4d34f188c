package oauth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/authcore/internal/audit"
	httpx "github.com/dropDatabas3/authcore/internal/http"
	"github.com/dropDatabas3/authcore/internal/oauth2"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

// TokenController handles POST /oauth2/token.
// Implements: Authorization Code (PKCE), Refresh Token, Client Credentials grants.
type TokenController struct {
	service oauth2.TokenService
}

// NewTokenController creates the controller.
func NewTokenController(s oauth2.TokenService) *TokenController {
	return &TokenController{service: s}
}

// Token handles POST /oauth2/token.
func (c *TokenController) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.token"))

	if !parseForm(w, r) {
		return
	}

	clientID, clientSecret := clientCredentials(r)
	grantType := strings.TrimSpace(r.PostForm.Get("grant_type"))
	log = log.With(logger.GrantType(grantType))

	req := oauth2.TokenRequest{
		GrantType:    grantType,
		ClientID:     strings.TrimSpace(clientID),
		ClientSecret: clientSecret,
		Code:         strings.TrimSpace(r.PostForm.Get("code")),
		RedirectURI:  strings.TrimSpace(r.PostForm.Get("redirect_uri")),
		CodeVerifier: strings.TrimSpace(r.PostForm.Get("code_verifier")),
		RefreshToken: strings.TrimSpace(r.PostForm.Get("refresh_token")),
		Scope:        strings.TrimSpace(r.PostForm.Get("scope")),
	}

	resp, err := c.service.Exchange(ctx, req)
	if err != nil {
		if oauth2.ErrorCode(err) == "server_error" {
			log.Error("token endpoint error", logger.Err(err))
		}
		c.handleServiceError(w, err)
		return
	}

	httpx.ObserveTokenIssued(grantType)
	audit.Log(ctx, audit.EventTokenIssued,
		logger.ClientID(req.ClientID),
		logger.GrantType(grantType),
		logger.Scope(resp.Scope),
	)
	writeJSON(w, http.StatusOK, resp)
}

func (c *TokenController) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, oauth2.ErrInvalidRequest):
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Missing or invalid parameters")
	case errors.Is(err, oauth2.ErrInvalidClient):
		w.Header().Set("WWW-Authenticate", `Basic realm="oauth2"`)
		writeOAuthError(w, http.StatusUnauthorized, "invalid_client", "Client authentication failed")
	case errors.Is(err, oauth2.ErrInvalidGrant):
		writeOAuthError(w, http.StatusBadRequest, "invalid_grant", "Invalid or expired grant")
	case errors.Is(err, oauth2.ErrUnauthorizedClient):
		writeOAuthError(w, http.StatusBadRequest, "unauthorized_client", "Client not authorized for this grant type")
	case errors.Is(err, oauth2.ErrUnsupportedGrantType):
		writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "Grant type not supported")
	case errors.Is(err, oauth2.ErrInvalidScope):
		writeOAuthError(w, http.StatusBadRequest, "invalid_scope", "Requested scope is invalid or not allowed")
	default:
		writeOAuthError(w, http.StatusInternalServerError, "server_error", "An unexpected error occurred")
	}
}
