// Package store provee la factory de adapters CredentialStore.
//
// Soporta:
//   - memory (in-process, para desarrollo/testing)
//   - postgres (pgx, para producción)
//   - redis (distribuido, TTL nativo)
package store

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/authcore/internal/config"
	"github.com/dropDatabas3/authcore/internal/domain/repository"
	"github.com/dropDatabas3/authcore/internal/store/memory"
	"github.com/dropDatabas3/authcore/internal/store/pg"
	rds "github.com/dropDatabas3/authcore/internal/store/redis"
)

// New crea el CredentialStore según la configuración.
func New(ctx context.Context, cfg *config.Config) (repository.CredentialStore, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		return pg.New(ctx, pg.Config{
			DSN:             cfg.Storage.Postgres.DSN,
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
	case "redis":
		return rds.New(ctx, rds.Config{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
			Prefix:   cfg.Storage.Redis.Prefix,
		})
	case "memory", "":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Storage.Driver)
	}
}
