package oauth

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/authcore/internal/audit"
	"github.com/dropDatabas3/authcore/internal/oauth2"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

// AuthorizeController handles POST /oauth2/authorize and the consent decision.
//
// End-user authentication is a collaborator concern: the fronting session
// layer authenticates the user and forwards the id in X-Authenticated-User.
type AuthorizeController struct {
	service oauth2.AuthorizeService
}

// NewAuthorizeController creates the controller.
func NewAuthorizeController(s oauth2.AuthorizeService) *AuthorizeController {
	return &AuthorizeController{service: s}
}

// Authorize handles GET/POST /oauth2/authorize.
func (c *AuthorizeController) Authorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.authorize"))

	if !parseForm(w, r) {
		return
	}

	req, ok := c.authorizeRequest(w, r)
	if !ok {
		return
	}

	res, err := c.service.Authorize(ctx, req)
	if err != nil {
		log.Error("authorize failed", logger.Err(err))
		writeOAuthError(w, http.StatusInternalServerError, "server_error", "An unexpected error occurred")
		return
	}
	c.writeResult(w, r, res)
}

// Consent handles POST /oauth2/authorize/consent. The form repeats the
// authorize parameters plus approve=true|false.
func (c *AuthorizeController) Consent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.consent"))

	if !parseForm(w, r) {
		return
	}

	req, ok := c.authorizeRequest(w, r)
	if !ok {
		return
	}

	var (
		res *oauth2.AuthorizeResult
		err error
	)
	if r.PostForm.Get("approve") == "true" {
		res, err = c.service.Approve(ctx, req)
		if err == nil {
			audit.Log(ctx, audit.EventConsentGranted,
				logger.UserID(req.UserID),
				logger.ClientID(req.ClientID),
				logger.Scope(req.Scope),
			)
		}
	} else {
		res, err = c.service.Deny(ctx, req)
		if err == nil {
			audit.Log(ctx, audit.EventConsentDenied,
				logger.UserID(req.UserID),
				logger.ClientID(req.ClientID),
			)
		}
	}
	if err != nil {
		log.Error("consent decision failed", logger.Err(err))
		writeOAuthError(w, http.StatusInternalServerError, "server_error", "An unexpected error occurred")
		return
	}
	c.writeResult(w, r, res)
}

func (c *AuthorizeController) authorizeRequest(w http.ResponseWriter, r *http.Request) (oauth2.AuthorizeRequest, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-Authenticated-User"))
	if userID == "" {
		writeOAuthError(w, http.StatusUnauthorized, "access_denied", "End-user authentication required")
		return oauth2.AuthorizeRequest{}, false
	}

	// r.Form cubre tanto GET (query) como POST (body).
	return oauth2.AuthorizeRequest{
		ResponseType:        strings.TrimSpace(r.Form.Get("response_type")),
		ClientID:            strings.TrimSpace(r.Form.Get("client_id")),
		RedirectURI:         strings.TrimSpace(r.Form.Get("redirect_uri")),
		Scope:               strings.TrimSpace(r.Form.Get("scope")),
		State:               strings.TrimSpace(r.Form.Get("state")),
		CodeChallenge:       strings.TrimSpace(r.Form.Get("code_challenge")),
		CodeChallengeMethod: strings.TrimSpace(r.Form.Get("code_challenge_method")),
		UserID:              userID,
	}, true
}

func (c *AuthorizeController) writeResult(w http.ResponseWriter, r *http.Request, res *oauth2.AuthorizeResult) {
	switch res.Type {
	case oauth2.AuthResultRedirect:
		http.Redirect(w, r, res.RedirectURL, http.StatusFound)
	case oauth2.AuthResultConsentRequired:
		writeJSON(w, http.StatusOK, map[string]any{
			"consent_required": true,
			"client_id":        res.Consent.ClientID,
			"client_name":      res.Consent.ClientName,
			"scope":            res.Consent.Scope,
		})
	default:
		writeOAuthError(w, http.StatusBadRequest, res.ErrorCode, res.ErrorDescription)
	}
}
