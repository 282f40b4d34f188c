package oauth2

import (
	"context"
	"net/url"
	"time"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	tokens "github.com/dropDatabas3/authcore/internal/security/token"
)

// IssueCodeInput describes the grant an authorization code is bound to.
type IssueCodeInput struct {
	ClientID        string
	UserID          string
	RedirectURI     string
	Scope           string
	CodeChallenge   string
	ChallengeMethod string
}

// CodeIssuer mints one-time authorization codes and composes the redirect
// targets the authorize endpoint answers with.
type CodeIssuer interface {
	// Issue generates a random code, persists only its hash with the code TTL
	// and returns the plaintext exactly once.
	Issue(ctx context.Context, in IssueCodeInput) (string, error)

	// SuccessRedirect appends code and state to the registered redirect URI.
	SuccessRedirect(redirectURI, code, state string) string

	// ErrorRedirect composes an OAuth-standard error redirect.
	ErrorRedirect(redirectURI, errCode, description, state string) string
}

type codeIssuer struct {
	store   repository.CredentialStore
	codeTTL time.Duration
}

// NewCodeIssuer creates a CodeIssuer.
func NewCodeIssuer(store repository.CredentialStore, codeTTL time.Duration) CodeIssuer {
	if codeTTL <= 0 {
		codeTTL = DefaultCodeTTL
	}
	return &codeIssuer{store: store, codeTTL: codeTTL}
}

func (c *codeIssuer) Issue(ctx context.Context, in IssueCodeInput) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.codes.issue"))

	code, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		log.Error("code generation failed", logger.Err(err))
		return "", ErrServerError
	}

	now := time.Now()
	record := &repository.AuthorizationCode{
		CodeHash:        tokens.SHA256Base64URL(code),
		ClientID:        in.ClientID,
		UserID:          in.UserID,
		RedirectURI:     in.RedirectURI,
		Scope:           in.Scope,
		CodeChallenge:   in.CodeChallenge,
		ChallengeMethod: in.ChallengeMethod,
		CreatedAt:       now,
		ExpiresAt:       now.Add(c.codeTTL),
	}
	if err := c.store.CreateAuthorizationCode(ctx, record); err != nil {
		log.Error("failed to store authorization code", logger.Err(err))
		return "", ErrServerError
	}

	log.Info("authorization code issued",
		logger.ClientID(in.ClientID),
		logger.UserID(in.UserID),
	)
	return code, nil
}

func (c *codeIssuer) SuccessRedirect(redirectURI, code, state string) string {
	return buildRedirect(redirectURI, map[string]string{
		"code":  code,
		"state": state,
	})
}

func (c *codeIssuer) ErrorRedirect(redirectURI, errCode, description, state string) string {
	params := map[string]string{"error": errCode}
	if description != "" {
		params["error_description"] = description
	}
	if state != "" {
		params["state"] = state
	}
	return buildRedirect(redirectURI, params)
}

// buildRedirect agrega query params a una URI preservando los existentes.
func buildRedirect(redirectURI string, params map[string]string) string {
	u, err := url.Parse(redirectURI)
	if err != nil {
		// La URI ya fue validada contra las registradas del client.
		return redirectURI
	}
	q := u.Query()
	for k, v := range params {
		if v != "" || k == "error" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
