package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/internal/config"
	tablesInfra "github.com/fastygo/taskboard/internal/infrastructure/aztables"
	pgInfra "github.com/fastygo/taskboard/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
	"github.com/fastygo/taskboard/repository"
	tablesRepo "github.com/fastygo/taskboard/repository/aztables"
	"github.com/fastygo/taskboard/repository/local"
	pgRepo "github.com/fastygo/taskboard/repository/postgres"
	redisRepo "github.com/fastygo/taskboard/repository/redis"
)

// openGateway builds the single active backend named by the configuration.
func openGateway(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Gateway, error) {
	if cfg.Store.Backend == config.BackendLocal {
		return local.Open(local.Options{
			Path:         cfg.Store.LocalPath,
			FallbackPath: cfg.Store.FallbackPath,
			LockTimeout:  cfg.Store.LockTimeout,
		}, log), nil
	}

	switch cfg.Store.RemoteDriver {
	case config.DriverRedis:
		client, err := redisInfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		log.Info("connected to redis", zap.String("prefix", cfg.Redis.KeyPrefix))
		return redisRepo.NewGateway(client, cfg.Redis.KeyPrefix), nil

	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(cfg, log); err != nil {
			return nil, err
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		return pgRepo.NewGateway(pool), nil

	default:
		svc, err := tablesInfra.NewServiceClient(cfg.AzureTables)
		if err != nil {
			return nil, err
		}
		gw, err := tablesRepo.Open(ctx, svc, cfg.AzureTables.TablePrefix, cfg.AzureTables.Partition, cfg.AzureTables.EnsureTables)
		if err != nil {
			return nil, err
		}
		log.Info("connected to azure tables", zap.String("prefix", cfg.AzureTables.TablePrefix))
		return gw, nil
	}
}
