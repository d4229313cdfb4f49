package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"vidtube/internal/config"
	"vidtube/internal/model"
	mysqlClient "vidtube/internal/platform/mysql"
	redisClient "vidtube/internal/platform/redis"
	"vidtube/internal/storage"
	s3Client "vidtube/internal/storage/s3"
)

type App struct {
	Config  *config.Config
	MySQL   *gorm.DB
	Redis   *redis.Client
	Storage storage.Client

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.User{},
		&model.Video{},
		&model.Subscription{},
		&model.WatchHistoryEntry{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	store, err := s3Client.New(cfg.S3.Region, cfg.S3.Bucket)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:    cfg,
		MySQL:     mysqlDB,
		Redis:     redisCli,
		Storage:   store,
		StartedAt: time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
