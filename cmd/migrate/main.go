package main

import (
	"context"
	"os"

	"github.com/Beliver-cell/Fantasy-luxe-store/config"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/database"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/logger"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/migrate"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.LoadDB(log)

	db := database.ConnectDBForMigration(&cfg.Config, log)
	defer database.CloseDB(db, log)

	ctx := context.Background()

	opts := migrate.DefaultMigrateOptions()

	if err := migrate.MigrateOrderDB(ctx, db, log, opts); err != nil {
		log.Fatal("Ошибка при выполнении миграции", zap.Error(err))
	}

	log.Info("Миграция успешно завершена")
}
