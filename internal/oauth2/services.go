// Package oauth2 implements the authorization-server core: authorize request
// validation, consent resolution, authorization code issuance, the token
// endpoint grants (authorization_code + PKCE, refresh_token rotation,
// client_credentials), introspection and revocation.
//
// The package holds no mutable state of its own; every single-use guarantee
// rides on the CredentialStore's atomic consume primitives.
package oauth2

import (
	"time"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
)

// Default credential lifetimes.
const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 30 * 24 * time.Hour
	DefaultCodeTTL    = 10 * time.Minute
)

// Deps contiene las dependencias para crear los services OAuth.
type Deps struct {
	Store      repository.CredentialStore
	Issuer     string // iss reportado en introspección
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	CodeTTL    time.Duration
}

// Services agrupa todos los services del dominio OAuth.
type Services struct {
	ClientAuth ClientAuthenticator
	Authorize  AuthorizeService
	Codes      CodeIssuer
	Token      TokenService
	Introspect IntrospectService
	Revoke     RevokeService
}

// NewServices crea el agregador de services OAuth.
func NewServices(d Deps) Services {
	if d.AccessTTL <= 0 {
		d.AccessTTL = DefaultAccessTTL
	}
	if d.RefreshTTL <= 0 {
		d.RefreshTTL = DefaultRefreshTTL
	}
	if d.CodeTTL <= 0 {
		d.CodeTTL = DefaultCodeTTL
	}

	clientAuth := NewClientAuthenticator(d.Store)
	codes := NewCodeIssuer(d.Store, d.CodeTTL)

	return Services{
		ClientAuth: clientAuth,
		Codes:      codes,
		Authorize:  NewAuthorizeService(d.Store, codes),
		Token: NewTokenService(TokenDeps{
			Store:      d.Store,
			ClientAuth: clientAuth,
			AccessTTL:  d.AccessTTL,
			RefreshTTL: d.RefreshTTL,
		}),
		Introspect: NewIntrospectService(d.Store, d.Issuer),
		Revoke:     NewRevokeService(d.Store, clientAuth),
	}
}
