// Package redis implementa CredentialStore sobre Redis (go-redis).
//
// Cada registro se guarda como JSON bajo una key tipada; el TTL de Redis
// refuerza la expiración, y los consumos usan GETDEL para que el
// read-and-delete sea una sola operación atómica del servidor.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type Store struct {
	client *redis.Client
	prefix string
}

// New crea el store y verifica la conexión.
func New(ctx context.Context, cfg Config) (*Store, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}

	return &Store{client: rdb, prefix: cfg.Prefix}, nil
}

func (s *Store) key(kind, id string) string {
	if s.prefix == "" {
		return kind + ":" + id
	}
	return s.prefix + ":" + kind + ":" + id
}

func (s *Store) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, ttl).Err()
}

func (s *Store) getJSON(ctx context.Context, key string, v any) error {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return repository.ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// getDelJSON consume la key con GETDEL (atómico en el servidor).
func (s *Store) getDelJSON(ctx context.Context, key string, v any) error {
	b, err := s.client.GetDel(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return repository.ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func (s *Store) GetClient(ctx context.Context, clientID string) (*repository.Client, error) {
	var c repository.Client
	if err := s.getJSON(ctx, s.key("client", clientID), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) SaveClient(ctx context.Context, c *repository.Client) error {
	if c == nil || c.ClientID == "" {
		return repository.ErrInvalidInput
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, s.key("client", c.ClientID), b, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrConflict
	}
	return nil
}

func (s *Store) CreateAuthorizationCode(ctx context.Context, code *repository.AuthorizationCode) error {
	return s.setJSON(ctx, s.key("code", code.CodeHash), code, time.Until(code.ExpiresAt))
}

func (s *Store) ConsumeAuthorizationCode(ctx context.Context, codeHash string) (*repository.AuthorizationCode, error) {
	var c repository.AuthorizationCode
	if err := s.getDelJSON(ctx, s.key("code", codeHash), &c); err != nil {
		return nil, err
	}
	if c.Expired(time.Now()) {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s *Store) CreateAccessToken(ctx context.Context, token *repository.AccessToken) error {
	return s.setJSON(ctx, s.key("at", token.Token), token, time.Until(token.ExpiresAt))
}

func (s *Store) GetAccessToken(ctx context.Context, token string) (*repository.AccessToken, error) {
	var t repository.AccessToken
	if err := s.getJSON(ctx, s.key("at", token), &t); err != nil {
		return nil, err
	}
	if t.Expired(time.Now()) {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (s *Store) DeleteAccessToken(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Del(ctx, s.key("at", token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) CreateRefreshToken(ctx context.Context, token *repository.RefreshToken) error {
	return s.setJSON(ctx, s.key("rt", token.TokenHash), token, time.Until(token.ExpiresAt))
}

func (s *Store) ConsumeRefreshToken(ctx context.Context, tokenHash string) (*repository.RefreshToken, error) {
	var t repository.RefreshToken
	if err := s.getDelJSON(ctx, s.key("rt", tokenHash), &t); err != nil {
		return nil, err
	}
	if t.Expired(time.Now()) {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (s *Store) DeleteRefreshToken(ctx context.Context, tokenHash string) (bool, error) {
	n, err := s.client.Del(ctx, s.key("rt", tokenHash)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) GetConsent(ctx context.Context, userID, clientID string) (*repository.UserConsent, error) {
	var c repository.UserConsent
	if err := s.getJSON(ctx, s.key("consent", userID+":"+clientID), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) UpsertConsent(ctx context.Context, userID, clientID, scope string) error {
	c := repository.UserConsent{
		UserID:    userID,
		ClientID:  clientID,
		Scope:     scope,
		GrantedAt: time.Now(),
	}
	return s.setJSON(ctx, s.key("consent", userID+":"+clientID), &c, 0)
}

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func (s *Store) Close() error { return s.client.Close() }
