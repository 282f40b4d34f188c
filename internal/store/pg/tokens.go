package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
)

func (s *Store) CreateAccessToken(ctx context.Context, token *repository.AccessToken) error {
	const q = `
		INSERT INTO oauth_access_tokens (token, client_id, user_id, scope, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, q,
		token.Token, token.ClientID, token.UserID, token.Scope, token.CreatedAt, token.ExpiresAt)
	return err
}

func (s *Store) GetAccessToken(ctx context.Context, token string) (*repository.AccessToken, error) {
	const q = `
		SELECT token, client_id, user_id, scope, created_at, expires_at
		FROM oauth_access_tokens
		WHERE token = $1 AND expires_at > NOW()`

	var t repository.AccessToken
	err := s.pool.QueryRow(ctx, q, token).Scan(
		&t.Token, &t.ClientID, &t.UserID, &t.Scope, &t.CreatedAt, &t.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) DeleteAccessToken(ctx context.Context, token string) (bool, error) {
	const q = `DELETE FROM oauth_access_tokens WHERE token = $1`
	ct, err := s.pool.Exec(ctx, q, token)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (s *Store) CreateRefreshToken(ctx context.Context, token *repository.RefreshToken) error {
	const q = `
		INSERT INTO oauth_refresh_tokens (token_hash, access_token, client_id, user_id, scope, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, q,
		token.TokenHash, token.AccessToken, token.ClientID, token.UserID,
		token.Scope, token.CreatedAt, token.ExpiresAt)
	return err
}

// ConsumeRefreshToken: misma semántica one-shot que los authorization codes.
func (s *Store) ConsumeRefreshToken(ctx context.Context, tokenHash string) (*repository.RefreshToken, error) {
	const q = `
		DELETE FROM oauth_refresh_tokens
		WHERE token_hash = $1 AND expires_at > NOW()
		RETURNING token_hash, access_token, client_id, user_id, scope, created_at, expires_at`

	var t repository.RefreshToken
	err := s.pool.QueryRow(ctx, q, tokenHash).Scan(
		&t.TokenHash, &t.AccessToken, &t.ClientID, &t.UserID, &t.Scope, &t.CreatedAt, &t.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) DeleteRefreshToken(ctx context.Context, tokenHash string) (bool, error) {
	const q = `DELETE FROM oauth_refresh_tokens WHERE token_hash = $1`
	ct, err := s.pool.Exec(ctx, q, tokenHash)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
