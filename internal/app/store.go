package app

import (
	"context"
	"fmt"
	"todoTracker/internal/config"
	"todoTracker/internal/logger"
	"todoTracker/internal/repository/task/inmemory"
	"todoTracker/internal/repository/task/postgres"
	"todoTracker/internal/repository/task/sqlite"
	"todoTracker/internal/service"

	"go.uber.org/zap"
)

type Store interface {
	service.TaskRepository
	Close()
}

// Migrator - хранилище со схемой, которую можно накатить и откатить
type Migrator interface {
	Store
	Migrate(context.Context) error
	Down(context.Context) error
}

// OpenStore открывает хранилище выбранного типа; схема sqlite и postgres накатывается сразу
func OpenStore(ctx context.Context, cfg *config.Config) (Store, error) {
	logger.Info("App: Открытие хранилища", zap.String("type", cfg.Repository.Type))

	switch cfg.Repository.Type {
	case config.RepositoryInMemory:
		return inmemory.NewTaskStorage(), nil
	case config.RepositorySQLite, config.RepositoryPostgres:
		store, err := OpenMigrator(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("неизвестный тип хранилища %q", cfg.Repository.Type)
}

// OpenMigrator открывает только персистентные хранилища
func OpenMigrator(ctx context.Context, cfg *config.Config) (Migrator, error) {
	switch cfg.Repository.Type {
	case config.RepositorySQLite:
		store, err := sqlite.New(ctx, cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("открытие sqlite: %w", err)
		}
		return store, nil
	case config.RepositoryPostgres:
		store, err := postgres.New(ctx, cfg.Database.URL, postgres.PoolOptions{
			MaxConns:        int32(cfg.Database.MaxConnections),
			MinConns:        int32(cfg.Database.MinConnections),
			MaxConnIdleTime: cfg.Database.IdleTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("открытие postgres: %w", err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("хранилище %q не поддерживает миграции", cfg.Repository.Type)
}
