package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"deskinsight/internal/aggregate"
	"deskinsight/internal/config"
	"deskinsight/internal/domain"
	"deskinsight/internal/storage/postgres"
	"deskinsight/internal/storage/sqlite"
)

// Store is the relational store contract shared by both drivers.
type Store interface {
	aggregate.Store
	Init(ctx context.Context) error
	Load(ctx context.Context, e domain.Entities) (domain.LoadStats, error)
}

func OpenStore(cfg config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		return sqlite.NewStore(cfg.DBPath, logger), nil
	case config.DriverPostgres:
		return postgres.NewStore(cfg.DatabaseURL, logger), nil
	default:
		return nil, fmt.Errorf("unsupported db_driver %q", cfg.DBDriver)
	}
}

// openStore opens the configured store and makes sure its schema exists.
func (rt *runtime) openStore(ctx context.Context) (Store, error) {
	store, err := OpenStore(rt.cfg, rt.logger)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init %s store: %w", rt.cfg.DBDriver, err)
	}
	return store, nil
}
