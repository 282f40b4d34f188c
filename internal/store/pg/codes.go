package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
)

func (s *Store) CreateAuthorizationCode(ctx context.Context, code *repository.AuthorizationCode) error {
	const q = `
		INSERT INTO oauth_authorization_codes
			(code_hash, client_id, user_id, redirect_uri, scope, code_challenge, challenge_method, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.pool.Exec(ctx, q,
		code.CodeHash, code.ClientID, code.UserID, code.RedirectURI, code.Scope,
		code.CodeChallenge, code.ChallengeMethod, code.CreatedAt, code.ExpiresAt)
	return err
}

// ConsumeAuthorizationCode lee y borra en una sola sentencia.
// Filas expiradas no se devuelven (quedan para el sweeper).
func (s *Store) ConsumeAuthorizationCode(ctx context.Context, codeHash string) (*repository.AuthorizationCode, error) {
	const q = `
		DELETE FROM oauth_authorization_codes
		WHERE code_hash = $1 AND expires_at > NOW()
		RETURNING code_hash, client_id, user_id, redirect_uri, scope, code_challenge, challenge_method, created_at, expires_at`

	var c repository.AuthorizationCode
	err := s.pool.QueryRow(ctx, q, codeHash).Scan(
		&c.CodeHash, &c.ClientID, &c.UserID, &c.RedirectURI, &c.Scope,
		&c.CodeChallenge, &c.ChallengeMethod, &c.CreatedAt, &c.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
