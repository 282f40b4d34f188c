package pg

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
)

func (s *Store) GetClient(ctx context.Context, clientID string) (*repository.Client, error) {
	const q = `
		SELECT id, client_id, name, type, secret_hash, redirect_uris, grant_types, scope
		FROM oauth_clients
		WHERE client_id = $1`

	var c repository.Client
	err := s.pool.QueryRow(ctx, q, clientID).Scan(
		&c.ID, &c.ClientID, &c.Name, &c.Type, &c.SecretHash,
		&c.RedirectURIs, &c.GrantTypes, &c.Scope,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) SaveClient(ctx context.Context, c *repository.Client) error {
	if c == nil || c.ClientID == "" {
		return repository.ErrInvalidInput
	}
	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}
	const q = `
		INSERT INTO oauth_clients (id, client_id, name, type, secret_hash, redirect_uris, grant_types, scope)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (client_id) DO NOTHING`

	tag, err := s.pool.Exec(ctx, q, id, c.ClientID, c.Name, c.Type, c.SecretHash,
		c.RedirectURIs, c.GrantTypes, c.Scope)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}
	return nil
}
