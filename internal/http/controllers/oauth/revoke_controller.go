package oauth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/authcore/internal/audit"
	"github.com/dropDatabas3/authcore/internal/oauth2"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

// RevokeController handles POST /oauth2/revoke.
type RevokeController struct {
	service oauth2.RevokeService
}

// NewRevokeController creates the controller.
func NewRevokeController(s oauth2.RevokeService) *RevokeController {
	return &RevokeController{service: s}
}

// Revoke handles POST /oauth2/revoke. Per RFC 7009 the endpoint answers
// 200 even when the token does not exist; only a failed client
// authentication yields an error response.
func (c *RevokeController) Revoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.revoke"))

	if !parseForm(w, r) {
		return
	}

	clientID, clientSecret := clientCredentials(r)
	req := oauth2.RevokeRequest{
		Token:         strings.TrimSpace(r.PostForm.Get("token")),
		TokenTypeHint: strings.TrimSpace(r.PostForm.Get("token_type_hint")),
		ClientID:      strings.TrimSpace(clientID),
		ClientSecret:  clientSecret,
	}

	if err := c.service.Revoke(ctx, req); err != nil {
		switch {
		case errors.Is(err, oauth2.ErrInvalidClient):
			w.Header().Set("WWW-Authenticate", `Basic realm="oauth2"`)
			writeOAuthError(w, http.StatusUnauthorized, "invalid_client", "Client authentication failed")
		default:
			log.Error("revocation error", logger.Err(err))
			writeOAuthError(w, http.StatusInternalServerError, "server_error", "An unexpected error occurred")
		}
		return
	}

	audit.Log(ctx, audit.EventTokenRevoked,
		logger.ClientID(req.ClientID),
		logger.String("token_type_hint", req.TokenTypeHint),
	)
	w.WriteHeader(http.StatusOK)
}
