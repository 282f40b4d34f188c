package oauth2

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

// ClientAuthenticator validates client identity and grant-type eligibility.
type ClientAuthenticator interface {
	// Authenticate resolves and validates the caller. With an empty secret the
	// client is treated as public and only has to exist; with a secret the
	// stored bcrypt hash must match. Failures are ErrInvalidClient.
	Authenticate(ctx context.Context, clientID, clientSecret string) (*repository.Client, error)

	// CheckGrantType reports whether grantType is in the client's allowed set.
	CheckGrantType(client *repository.Client, grantType string) bool
}

type clientAuthenticator struct {
	store repository.CredentialStore
}

// NewClientAuthenticator creates a ClientAuthenticator.
func NewClientAuthenticator(store repository.CredentialStore) ClientAuthenticator {
	return &clientAuthenticator{store: store}
}

func (a *clientAuthenticator) Authenticate(ctx context.Context, clientID, clientSecret string) (*repository.Client, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.clientauth"))

	if clientID == "" {
		return nil, ErrInvalidClient
	}

	client, err := a.store.GetClient(ctx, clientID)
	if err != nil {
		if repository.IsNotFound(err) {
			log.Warn("client not found", logger.ClientID(clientID))
			return nil, ErrInvalidClient
		}
		log.Error("client lookup failed", logger.Err(err))
		return nil, ErrServerError
	}

	// Public client: sin secret, basta con que exista.
	if clientSecret == "" {
		return client, nil
	}

	if client.SecretHash == "" {
		log.Warn("secret supplied for client without one", logger.ClientID(clientID))
		return nil, ErrInvalidClient
	}
	if err := bcrypt.CompareHashAndPassword([]byte(client.SecretHash), []byte(clientSecret)); err != nil {
		log.Warn("client secret mismatch", logger.ClientID(clientID))
		return nil, ErrInvalidClient
	}

	return client, nil
}

func (a *clientAuthenticator) CheckGrantType(client *repository.Client, grantType string) bool {
	for _, g := range client.GrantTypes {
		if strings.EqualFold(g, grantType) {
			return true
		}
	}
	return false
}
