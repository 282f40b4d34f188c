package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
)

func (s *Store) GetConsent(ctx context.Context, userID, clientID string) (*repository.UserConsent, error) {
	const q = `
		SELECT user_id, client_id, scope, granted_at
		FROM user_consents
		WHERE user_id = $1 AND client_id = $2`

	var c repository.UserConsent
	err := s.pool.QueryRow(ctx, q, userID, clientID).Scan(
		&c.UserID, &c.ClientID, &c.Scope, &c.GrantedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) UpsertConsent(ctx context.Context, userID, clientID, scope string) error {
	const q = `
		INSERT INTO user_consents (user_id, client_id, scope, granted_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, client_id)
		DO UPDATE SET scope = EXCLUDED.scope, granted_at = NOW()`

	_, err := s.pool.Exec(ctx, q, userID, clientID, scope)
	return err
}
