package main

import (
	"context"
	"os"

	"github.com/Beliver-cell/Fantasy-luxe-store/config"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/cleanup"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/database"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/logger"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/repository"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Разовая очистка зависших неоплаченных заказов (для cron).
func main() {
	_ = godotenv.Load()

	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	log := logger.L()
	dbCfg := config.LoadDB(log)
	ttl := config.LoadPendingOrderTTL(log)

	db := database.ConnectDB(&dbCfg.Config, log)
	defer database.CloseDB(db, log)

	cleanupSvc := cleanup.NewCleanupService(repository.New(db).Orders, ttl, log)

	if err := cleanupSvc.RunFullCleanup(context.Background()); err != nil {
		log.Fatal("failed to cleanup stale pending orders", zap.Error(err))
	}

	log.Info("cleanup completed successfully", zap.Duration("ttl", ttl))
}
