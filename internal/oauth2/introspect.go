package oauth2

import (
	"context"
	"time"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	tokens "github.com/dropDatabas3/authcore/internal/security/token"
)

// IntrospectResult is an RFC 7662 introspection object. All claim fields are
// omitted when the token is inactive.
type IntrospectResult struct {
	Active    bool   `json:"active"`
	Scope     string `json:"scope,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
	Iat       int64  `json:"iat,omitempty"`
	Sub       string `json:"sub,omitempty"`
	Aud       string `json:"aud,omitempty"`
	Iss       string `json:"iss,omitempty"`
	Jti       string `json:"jti,omitempty"`
}

// IntrospectService reports token activity and claims.
type IntrospectService interface {
	// Introspect always returns a result (never nil): missing, expired or
	// foreign-client tokens are simply active=false, so unauthorized callers
	// learn nothing about a token's existence.
	Introspect(ctx context.Context, token, clientID string) (*IntrospectResult, error)
}

type introspectService struct {
	store  repository.CredentialStore
	issuer string
}

// NewIntrospectService creates an IntrospectService.
func NewIntrospectService(store repository.CredentialStore, issuer string) IntrospectService {
	return &introspectService{store: store, issuer: issuer}
}

func (s *introspectService) Introspect(ctx context.Context, token, clientID string) (*IntrospectResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.introspect"))

	if token == "" {
		return &IntrospectResult{Active: false}, nil
	}

	at, err := s.store.GetAccessToken(ctx, token)
	if err != nil {
		if repository.IsNotFound(err) {
			log.Debug("token not found")
			return &IntrospectResult{Active: false}, nil
		}
		log.Error("token lookup failed", logger.Err(err))
		return nil, ErrServerError
	}

	if at.Expired(time.Now()) {
		return &IntrospectResult{Active: false}, nil
	}
	// No revelar existencia a un client ajeno.
	if at.ClientID != clientID {
		log.Debug("caller is not the token's client", logger.ClientID(clientID))
		return &IntrospectResult{Active: false}, nil
	}

	return &IntrospectResult{
		Active:    true,
		Scope:     at.Scope,
		ClientID:  at.ClientID,
		TokenType: "Bearer",
		Exp:       at.ExpiresAt.Unix(),
		Iat:       at.CreatedAt.Unix(),
		Sub:       at.UserID,
		Aud:       at.ClientID,
		Iss:       s.issuer,
		Jti:       tokens.TokenID(at.Token),
	}, nil
}
