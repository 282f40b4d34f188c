package oauth2

import (
	"context"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
	"github.com/dropDatabas3/authcore/internal/oauth2/pkce"
	"github.com/dropDatabas3/authcore/internal/oauth2/scope"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

// AuthorizeRequest is a validated-to-be authorize call. UserID is the
// already-authenticated end user; session handling belongs to the transport.
type AuthorizeRequest struct {
	ResponseType        string
	ClientID            string
	RedirectURI         string
	Scope               string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
	UserID              string
}

// AuthResult type discriminator.
const (
	AuthResultRedirect        = "redirect"         // success or error redirect to the client
	AuthResultConsentRequired = "consent_required" // transport must prompt the user
	AuthResultError           = "error"            // not redirectable (client/redirect invalid)
)

// ConsentPrompt carries everything the transport needs to render a consent
// decision and call back into Approve/Deny.
type ConsentPrompt struct {
	ClientID   string
	ClientName string
	UserID     string
	Scope      string
}

// AuthorizeResult is the outcome of an authorize pass.
type AuthorizeResult struct {
	Type        string
	RedirectURL string
	Consent     *ConsentPrompt

	// Set when Type == AuthResultError.
	ErrorCode        string
	ErrorDescription string
}

// AuthorizeService validates authorize requests and resolves user consent.
type AuthorizeService interface {
	// Authorize runs the full validation pass. If the user's recorded consent
	// covers the requested scope it issues a code right away; otherwise the
	// transport gets a consent prompt.
	Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeResult, error)

	// Approve records the user's approval (union with prior grants) and
	// issues the code.
	Approve(ctx context.Context, req AuthorizeRequest) (*AuthorizeResult, error)

	// Deny answers with an access_denied redirect. No state is written.
	Deny(ctx context.Context, req AuthorizeRequest) (*AuthorizeResult, error)
}

type authorizeService struct {
	store repository.CredentialStore
	codes CodeIssuer
}

// NewAuthorizeService creates an AuthorizeService.
func NewAuthorizeService(store repository.CredentialStore, codes CodeIssuer) AuthorizeService {
	return &authorizeService{store: store, codes: codes}
}

func (s *authorizeService) Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.authorize"))

	client, res, err := s.validate(ctx, req)
	if res != nil || err != nil {
		return res, err
	}

	effScope := effectiveScope(req.Scope, client)

	granted, err := s.checkUserConsent(ctx, req.UserID, req.ClientID, effScope)
	if err != nil {
		log.Error("consent lookup failed", logger.Err(err))
		return nil, ErrServerError
	}
	if !granted {
		return &AuthorizeResult{
			Type: AuthResultConsentRequired,
			Consent: &ConsentPrompt{
				ClientID:   client.ClientID,
				ClientName: client.Name,
				UserID:     req.UserID,
				Scope:      effScope,
			},
		}, nil
	}

	return s.issueCode(ctx, req, effScope)
}

func (s *authorizeService) Approve(ctx context.Context, req AuthorizeRequest) (*AuthorizeResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.authorize.approve"))

	client, res, err := s.validate(ctx, req)
	if res != nil || err != nil {
		return res, err
	}

	effScope := effectiveScope(req.Scope, client)

	// Consent aprobado = unión de lo previamente otorgado con lo aprobado ahora.
	prior := ""
	if existing, err := s.store.GetConsent(ctx, req.UserID, req.ClientID); err == nil {
		prior = existing.Scope
	} else if !repository.IsNotFound(err) {
		log.Error("consent lookup failed", logger.Err(err))
		return nil, ErrServerError
	}
	if err := s.store.UpsertConsent(ctx, req.UserID, req.ClientID, scope.Merge(prior, effScope)); err != nil {
		log.Error("consent upsert failed", logger.Err(err))
		return nil, ErrServerError
	}

	log.Info("consent granted",
		logger.UserID(req.UserID),
		logger.ClientID(req.ClientID),
		logger.Scope(effScope),
	)
	return s.issueCode(ctx, req, effScope)
}

func (s *authorizeService) Deny(ctx context.Context, req AuthorizeRequest) (*AuthorizeResult, error) {
	_, res, err := s.validate(ctx, req)
	if res != nil || err != nil {
		return res, err
	}
	return &AuthorizeResult{
		Type:        AuthResultRedirect,
		RedirectURL: s.codes.ErrorRedirect(req.RedirectURI, ErrAccessDenied.Error(), "user denied the request", req.State),
	}, nil
}

// validate runs the ordered checks. The first failure wins; whether it is
// delivered as an error redirect or a direct error depends on the client and
// redirect_uri having been validated already (never redirect to an
// unregistered URI).
func (s *authorizeService) validate(ctx context.Context, req AuthorizeRequest) (*repository.Client, *AuthorizeResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.authorize.validate"))

	// 2. El client tiene que existir (se resuelve primero para decidir el
	// canal de entrega de errores, pero el orden de reporte respeta 1..7).
	client, clientErr := s.store.GetClient(ctx, req.ClientID)
	if clientErr != nil && !repository.IsNotFound(clientErr) {
		log.Error("client lookup failed", logger.Err(clientErr))
		return nil, nil, ErrServerError
	}

	redirectOK := client != nil && registeredRedirect(client, req.RedirectURI)

	fail := func(err error, desc string) (*repository.Client, *AuthorizeResult, error) {
		log.Warn("authorize request rejected",
			logger.ClientID(req.ClientID),
			logger.String("reason", desc),
		)
		if !redirectOK {
			return nil, &AuthorizeResult{
				Type:             AuthResultError,
				ErrorCode:        ErrorCode(err),
				ErrorDescription: desc,
			}, nil
		}
		return nil, &AuthorizeResult{
			Type:        AuthResultRedirect,
			RedirectURL: s.codes.ErrorRedirect(req.RedirectURI, ErrorCode(err), desc, req.State),
		}, nil
	}

	// 1. response_type
	if req.ResponseType != "code" {
		return fail(ErrUnsupportedResponseType, "response_type must be code")
	}
	// 2. client
	if client == nil {
		return fail(ErrInvalidClient, "unknown client")
	}
	// 3. redirect_uri registrada (match exacto)
	if !redirectOK {
		return fail(ErrInvalidRequest, "redirect_uri not registered for client")
	}
	// 4. grant authorization_code habilitado
	if !grantAllowed(client, "authorization_code") {
		return fail(ErrUnauthorizedClient, "client not allowed to use authorization_code")
	}
	// 5. scope ⊆ scope permitido del client
	if req.Scope != "" && !scope.IsSubset(req.Scope, client.Scope) {
		return fail(ErrInvalidScope, "scope not allowed for client")
	}
	// 6. state obligatorio
	if req.State == "" {
		return fail(ErrInvalidRequest, "state is required")
	}
	// 7. PKCE method
	if req.CodeChallenge != "" {
		method := req.CodeChallengeMethod
		if method == "" {
			method = pkce.MethodPlain
		}
		if !pkce.KnownMethod(method) {
			return fail(ErrInvalidRequest, "unsupported code_challenge_method")
		}
	}

	return client, nil, nil
}

// checkUserConsent reporta si el consent registrado cubre el scope pedido.
// Pedir menos que lo otorgado no fuerza re-consent; pedir más sí.
func (s *authorizeService) checkUserConsent(ctx context.Context, userID, clientID, requested string) (bool, error) {
	consent, err := s.store.GetConsent(ctx, userID, clientID)
	if err != nil {
		if repository.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return scope.IsSubset(requested, consent.Scope), nil
}

func (s *authorizeService) issueCode(ctx context.Context, req AuthorizeRequest, effScope string) (*AuthorizeResult, error) {
	method := req.CodeChallengeMethod
	if req.CodeChallenge != "" && method == "" {
		method = pkce.MethodPlain
	}

	code, err := s.codes.Issue(ctx, IssueCodeInput{
		ClientID:        req.ClientID,
		UserID:          req.UserID,
		RedirectURI:     req.RedirectURI,
		Scope:           effScope,
		CodeChallenge:   req.CodeChallenge,
		ChallengeMethod: method,
	})
	if err != nil {
		return nil, err
	}

	return &AuthorizeResult{
		Type:        AuthResultRedirect,
		RedirectURL: s.codes.SuccessRedirect(req.RedirectURI, code, req.State),
	}, nil
}

func effectiveScope(requested string, client *repository.Client) string {
	if requested != "" {
		return requested
	}
	return client.Scope
}

func registeredRedirect(client *repository.Client, uri string) bool {
	if uri == "" {
		return false
	}
	for _, r := range client.RedirectURIs {
		if r == uri {
			return true
		}
	}
	return false
}

func grantAllowed(client *repository.Client, grantType string) bool {
	for _, g := range client.GrantTypes {
		if g == grantType {
			return true
		}
	}
	return false
}
