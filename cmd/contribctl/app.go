package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/sjperalta/fintera-coop/internal/config"
	"github.com/sjperalta/fintera-coop/internal/database"
	"github.com/sjperalta/fintera-coop/internal/lock"
	"github.com/sjperalta/fintera-coop/internal/repository"
	"github.com/sjperalta/fintera-coop/internal/services"
	"github.com/sjperalta/fintera-coop/pkg/logger"
)

// app is what a command needs once configuration and the database are up
type app struct {
	cfg    *config.Config
	db     *gorm.DB
	locker lock.Locker
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.Environment)

	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, db: db, locker: lock.NoopLocker{}}, nil
}

// services builds the service layer without a worker so events are
// delivered before the command returns
func (a *app) services(ctx context.Context) (*services.Services, error) {
	if a.cfg.RedisURL != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		locker, err := lock.NewRedisLockerFromURL(dialCtx, a.cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.locker = locker
	}
	return services.NewServices(repository.NewRepositories(a.db), nil, nil, a.locker, a.cfg, a.db)
}

func (a *app) close() {
	if closer, ok := a.locker.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
