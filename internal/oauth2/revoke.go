package oauth2

import (
	"context"

	"github.com/dropDatabas3/authcore/internal/observability/logger"
	tokens "github.com/dropDatabas3/authcore/internal/security/token"
)

// RevokeRequest is a parsed revocation-endpoint call.
type RevokeRequest struct {
	Token         string
	TokenTypeHint string // "access_token" | "refresh_token" | ""
	ClientID      string
	ClientSecret  string
}

// RevokeService invalidates tokens per RFC 7009.
type RevokeService interface {
	// Revoke deletes the token if it exists. The hinted type is probed first
	// and the other kind second, so a wrong hint is indistinguishable from an
	// already-revoked token. A missing token is still success; only a failed
	// client authentication is an error.
	Revoke(ctx context.Context, req RevokeRequest) error
}

type revokeService struct {
	store      storeDeleter
	clientAuth ClientAuthenticator
}

// storeDeleter is the slice of CredentialStore revocation needs.
type storeDeleter interface {
	DeleteAccessToken(ctx context.Context, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, tokenHash string) (bool, error)
}

// NewRevokeService creates a RevokeService.
func NewRevokeService(store storeDeleter, clientAuth ClientAuthenticator) RevokeService {
	return &revokeService{store: store, clientAuth: clientAuth}
}

func (s *revokeService) Revoke(ctx context.Context, req RevokeRequest) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.revoke"))

	if req.ClientSecret != "" {
		if _, err := s.clientAuth.Authenticate(ctx, req.ClientID, req.ClientSecret); err != nil {
			return err
		}
	}
	if req.Token == "" {
		return nil
	}

	probes := []func() (bool, error){
		func() (bool, error) { return s.store.DeleteAccessToken(ctx, req.Token) },
		func() (bool, error) { return s.store.DeleteRefreshToken(ctx, tokens.SHA256Base64URL(req.Token)) },
	}
	if req.TokenTypeHint == "refresh_token" {
		probes[0], probes[1] = probes[1], probes[0]
	}

	var probeErr error
	for _, probe := range probes {
		deleted, err := probe()
		if err != nil {
			log.Error("revocation probe failed", logger.Err(err))
			probeErr = err
			continue
		}
		if deleted {
			log.Info("token revoked", logger.ClientID(req.ClientID))
			return nil
		}
	}
	if probeErr != nil {
		// Un backend caído no es ausencia: el token pudo quedar vivo.
		return ErrServerError
	}

	log.Debug("token not found (idempotent success)")
	return nil
}
