// Package memory implementa CredentialStore en memoria (desarrollo/testing).
//
// Los registros con TTL viven en go-cache; la atomicidad de los consumos se
// garantiza con un mutex por familia de credenciales.
package memory

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
)

type Store struct {
	clientsMu sync.RWMutex
	clients   map[string]repository.Client

	codesMu sync.Mutex
	codes   *gocache.Cache

	accessMu sync.Mutex
	access   *gocache.Cache

	refreshMu sync.Mutex
	refresh   *gocache.Cache

	consentsMu sync.RWMutex
	consents   map[string]repository.UserConsent // key: userID + "\x00" + clientID
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		clients:  make(map[string]repository.Client),
		codes:    gocache.New(gocache.NoExpiration, time.Minute),
		access:   gocache.New(gocache.NoExpiration, time.Minute),
		refresh:  gocache.New(gocache.NoExpiration, time.Minute),
		consents: make(map[string]repository.UserConsent),
	}
}

func (s *Store) GetClient(ctx context.Context, clientID string) (*repository.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	c, ok := s.clients[clientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := c
	return &out, nil
}

func (s *Store) SaveClient(ctx context.Context, c *repository.Client) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c == nil || c.ClientID == "" {
		return repository.ErrInvalidInput
	}
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if _, exists := s.clients[c.ClientID]; exists {
		return repository.ErrConflict
	}
	s.clients[c.ClientID] = *c
	return nil
}

func (s *Store) CreateAuthorizationCode(ctx context.Context, code *repository.AuthorizationCode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := *code
	s.codesMu.Lock()
	defer s.codesMu.Unlock()
	s.codes.Set(code.CodeHash, cp, time.Until(code.ExpiresAt))
	return nil
}

// ConsumeAuthorizationCode es get+delete bajo el mismo lock: bajo canje
// concurrente exactamente un caller obtiene el registro.
func (s *Store) ConsumeAuthorizationCode(ctx context.Context, codeHash string) (*repository.AuthorizationCode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.codesMu.Lock()
	defer s.codesMu.Unlock()
	v, ok := s.codes.Get(codeHash)
	if !ok {
		return nil, repository.ErrNotFound
	}
	s.codes.Delete(codeHash)
	code := v.(repository.AuthorizationCode)
	if code.Expired(time.Now()) {
		return nil, repository.ErrNotFound
	}
	return &code, nil
}

func (s *Store) CreateAccessToken(ctx context.Context, token *repository.AccessToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := *token
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	s.access.Set(token.Token, cp, time.Until(token.ExpiresAt))
	return nil
}

func (s *Store) GetAccessToken(ctx context.Context, token string) (*repository.AccessToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	v, ok := s.access.Get(token)
	if !ok {
		return nil, repository.ErrNotFound
	}
	at := v.(repository.AccessToken)
	if at.Expired(time.Now()) {
		return nil, repository.ErrNotFound
	}
	return &at, nil
}

func (s *Store) DeleteAccessToken(ctx context.Context, token string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	if _, ok := s.access.Get(token); !ok {
		return false, nil
	}
	s.access.Delete(token)
	return true, nil
}

func (s *Store) CreateRefreshToken(ctx context.Context, token *repository.RefreshToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := *token
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	s.refresh.Set(token.TokenHash, cp, time.Until(token.ExpiresAt))
	return nil
}

// ConsumeRefreshToken: misma semántica one-shot que los authorization codes.
func (s *Store) ConsumeRefreshToken(ctx context.Context, tokenHash string) (*repository.RefreshToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	v, ok := s.refresh.Get(tokenHash)
	if !ok {
		return nil, repository.ErrNotFound
	}
	s.refresh.Delete(tokenHash)
	rt := v.(repository.RefreshToken)
	if rt.Expired(time.Now()) {
		return nil, repository.ErrNotFound
	}
	return &rt, nil
}

func (s *Store) DeleteRefreshToken(ctx context.Context, tokenHash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if _, ok := s.refresh.Get(tokenHash); !ok {
		return false, nil
	}
	s.refresh.Delete(tokenHash)
	return true, nil
}

func (s *Store) GetConsent(ctx context.Context, userID, clientID string) (*repository.UserConsent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.consentsMu.RLock()
	defer s.consentsMu.RUnlock()
	c, ok := s.consents[consentKey(userID, clientID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := c
	return &out, nil
}

func (s *Store) UpsertConsent(ctx context.Context, userID, clientID, scope string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.consentsMu.Lock()
	defer s.consentsMu.Unlock()
	s.consents[consentKey(userID, clientID)] = repository.UserConsent{
		UserID:    userID,
		ClientID:  clientID,
		Scope:     scope,
		GrantedAt: time.Now(),
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

func consentKey(userID, clientID string) string {
	return userID + "\x00" + clientID
}
