package oauth2

import (
	"context"
	"time"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
	"github.com/dropDatabas3/authcore/internal/oauth2/pkce"
	"github.com/dropDatabas3/authcore/internal/oauth2/scope"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	tokens "github.com/dropDatabas3/authcore/internal/security/token"
)

// TokenRequest is a parsed token-endpoint call.
type TokenRequest struct {
	GrantType    string
	ClientID     string
	ClientSecret string

	// authorization_code
	Code         string
	RedirectURI  string
	CodeVerifier string

	// refresh_token
	RefreshToken string

	// refresh_token (narrowing) y client_credentials
	Scope string
}

// TokenResponse is the success payload of the token endpoint.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// TokenService is the grant dispatcher of the token endpoint.
type TokenService interface {
	Exchange(ctx context.Context, req TokenRequest) (*TokenResponse, error)
}

// TokenDeps contains dependencies for the token service.
type TokenDeps struct {
	Store      repository.CredentialStore
	ClientAuth ClientAuthenticator
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type tokenService struct {
	store      repository.CredentialStore
	clientAuth ClientAuthenticator
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a TokenService.
func NewTokenService(d TokenDeps) TokenService {
	if d.AccessTTL <= 0 {
		d.AccessTTL = DefaultAccessTTL
	}
	if d.RefreshTTL <= 0 {
		d.RefreshTTL = DefaultRefreshTTL
	}
	return &tokenService{
		store:      d.Store,
		clientAuth: d.ClientAuth,
		accessTTL:  d.AccessTTL,
		refreshTTL: d.RefreshTTL,
	}
}

// Exchange authenticates the client and dispatches on grant_type. Any
// authentication failure short-circuits before grant-specific logic runs.
func (s *tokenService) Exchange(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	client, err := s.clientAuth.Authenticate(ctx, req.ClientID, req.ClientSecret)
	if err != nil {
		return nil, err
	}

	switch req.GrantType {
	case "authorization_code":
		return s.exchangeAuthorizationCode(ctx, client, req)
	case "refresh_token":
		return s.exchangeRefreshToken(ctx, client, req)
	case "client_credentials":
		return s.exchangeClientCredentials(ctx, client, req)
	default:
		return nil, ErrUnsupportedGrantType
	}
}

func (s *tokenService) exchangeAuthorizationCode(ctx context.Context, client *repository.Client, req TokenRequest) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.token.authcode"))

	if req.Code == "" || req.RedirectURI == "" {
		return nil, ErrInvalidRequest
	}
	if !s.clientAuth.CheckGrantType(client, "authorization_code") {
		log.Warn("grant_type not allowed for client", logger.ClientID(client.ClientID))
		return nil, ErrUnauthorizedClient
	}

	// Consumo one-shot: read-and-delete atómico en el store. Un code ausente,
	// ya consumido o expirado es indistinguible para el caller.
	code, err := s.store.ConsumeAuthorizationCode(ctx, tokens.SHA256Base64URL(req.Code))
	if err != nil {
		if repository.IsNotFound(err) {
			log.Warn("authorization code not found", logger.ClientID(client.ClientID))
			return nil, ErrInvalidGrant
		}
		log.Error("code consumption failed", logger.Err(err))
		return nil, ErrServerError
	}
	if code.Expired(time.Now()) {
		log.Warn("authorization code expired")
		return nil, ErrInvalidGrant
	}
	if code.ClientID != client.ClientID {
		log.Warn("code issued to another client", logger.ClientID(client.ClientID))
		return nil, ErrInvalidGrant
	}
	// Binding byte a byte con la redirect_uri usada en la emisión.
	if code.RedirectURI != req.RedirectURI {
		log.Warn("redirect_uri mismatch")
		return nil, ErrInvalidGrant
	}

	if code.CodeChallenge != "" {
		if req.CodeVerifier == "" {
			return nil, ErrInvalidRequest
		}
		if !pkce.Verify(req.CodeVerifier, code.CodeChallenge, code.ChallengeMethod) {
			log.Warn("PKCE verification failed", logger.ClientID(client.ClientID))
			return nil, ErrInvalidGrant
		}
	}

	resp, err := s.issueTokenPair(ctx, client.ClientID, code.UserID, code.Scope)
	if err != nil {
		return nil, err
	}

	log.Info("authorization_code exchanged",
		logger.ClientID(client.ClientID),
		logger.UserID(code.UserID),
	)
	return resp, nil
}

func (s *tokenService) exchangeRefreshToken(ctx context.Context, client *repository.Client, req TokenRequest) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.token.refresh"))

	if req.RefreshToken == "" {
		return nil, ErrInvalidRequest
	}
	if !s.clientAuth.CheckGrantType(client, "refresh_token") {
		log.Warn("grant_type not allowed for client", logger.ClientID(client.ClientID))
		return nil, ErrUnauthorizedClient
	}

	// Rotación completa: el consumo invalida el token viejo de forma
	// permanente aunque el resto del request falle después.
	rt, err := s.store.ConsumeRefreshToken(ctx, tokens.SHA256Base64URL(req.RefreshToken))
	if err != nil {
		if repository.IsNotFound(err) {
			log.Warn("refresh token not found", logger.ClientID(client.ClientID))
			return nil, ErrInvalidGrant
		}
		log.Error("refresh token consumption failed", logger.Err(err))
		return nil, ErrServerError
	}
	if rt.Expired(time.Now()) {
		log.Warn("refresh token expired")
		return nil, ErrInvalidGrant
	}
	if rt.ClientID != client.ClientID {
		log.Warn("refresh token issued to another client", logger.ClientID(client.ClientID))
		return nil, ErrInvalidGrant
	}

	// Narrowing: un scope pedido tiene que ser subconjunto del original y pasa
	// a ser el scope del par nuevo; sin scope, el original sigue igual.
	newScope := rt.Scope
	if req.Scope != "" {
		if !scope.IsSubset(req.Scope, rt.Scope) {
			log.Warn("refresh scope widening rejected",
				logger.ClientID(client.ClientID),
				logger.Scope(req.Scope),
			)
			return nil, ErrInvalidScope
		}
		newScope = req.Scope
	}

	resp, err := s.issueTokenPair(ctx, client.ClientID, rt.UserID, newScope)
	if err != nil {
		return nil, err
	}

	log.Info("refresh_token rotated",
		logger.ClientID(client.ClientID),
		logger.UserID(rt.UserID),
	)
	return resp, nil
}

func (s *tokenService) exchangeClientCredentials(ctx context.Context, client *repository.Client, req TokenRequest) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.token.clientcreds"))

	if !s.clientAuth.CheckGrantType(client, "client_credentials") {
		log.Warn("grant_type not allowed for client", logger.ClientID(client.ClientID))
		return nil, ErrUnauthorizedClient
	}
	// Solo clients confidenciales, autenticados con secret.
	if client.Type != repository.ClientTypeConfidential || req.ClientSecret == "" {
		log.Warn("client_credentials requires an authenticated confidential client")
		return nil, ErrInvalidClient
	}

	grantScope := req.Scope
	if grantScope == "" {
		grantScope = client.Scope
	} else if !scope.IsSubset(grantScope, client.Scope) {
		log.Warn("scope not allowed", logger.ClientID(client.ClientID), logger.Scope(grantScope))
		return nil, ErrInvalidScope
	}

	access, err := s.createAccessToken(ctx, client.ClientID, client.ClientID, grantScope)
	if err != nil {
		return nil, err
	}

	log.Info("client_credentials token issued", logger.ClientID(client.ClientID))
	return &TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.accessTTL.Seconds()),
		Scope:       grantScope,
	}, nil
}

// issueTokenPair crea un access token y su refresh token emparejado. Si la
// creación del refresh falla después de haber persistido el access, se borra
// el access recién creado (best effort) y se reporta server_error.
func (s *tokenService) issueTokenPair(ctx context.Context, clientID, userID, grantScope string) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.token.issue"))

	access, err := s.createAccessToken(ctx, clientID, userID, grantScope)
	if err != nil {
		return nil, err
	}

	rawRT, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		log.Error("refresh token generation failed", logger.Err(err))
		_, _ = s.store.DeleteAccessToken(ctx, access)
		return nil, ErrServerError
	}

	now := time.Now()
	err = s.store.CreateRefreshToken(ctx, &repository.RefreshToken{
		TokenHash:   tokens.SHA256Base64URL(rawRT),
		AccessToken: access,
		ClientID:    clientID,
		UserID:      userID,
		Scope:       grantScope,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.refreshTTL),
	})
	if err != nil {
		log.Error("failed to store refresh token", logger.Err(err))
		_, _ = s.store.DeleteAccessToken(ctx, access)
		return nil, ErrServerError
	}

	// expires_in sale del TTL configurado, no del reloj: re-derivarlo con
	// time.Until trunca a 3599.
	return &TokenResponse{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		RefreshToken: rawRT,
		Scope:        grantScope,
	}, nil
}

func (s *tokenService) createAccessToken(ctx context.Context, clientID, userID, grantScope string) (string, error) {
	log := logger.From(ctx)

	access, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		log.Error("access token generation failed", logger.Err(err))
		return "", ErrServerError
	}

	now := time.Now()
	err = s.store.CreateAccessToken(ctx, &repository.AccessToken{
		Token:     access,
		ClientID:  clientID,
		UserID:    userID,
		Scope:     grantScope,
		CreatedAt: now,
		ExpiresAt: now.Add(s.accessTTL),
	})
	if err != nil {
		log.Error("failed to store access token", logger.Err(err))
		return "", ErrServerError
	}
	return access, nil
}
