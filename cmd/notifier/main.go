package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Beliver-cell/Fantasy-luxe-store/config"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/logger"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/notify"

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

	cfg := config.LoadNotifier(log)

	emailSender := notify.NewEmailSender(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		SSL:      cfg.SMTPSSL,
		TMPLDir:  cfg.TMPLDir,
	})

	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("no kafka brokers configured (KAFKA_BROKERS)")
	}

	cons := notify.NewKafkaEmailConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.KafkaTopic, emailSender, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := cons.Run(ctx); err != nil {
			log.Error("consumer stopped", zap.Error(err))
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutdown signal received")
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}
	_ = cons.Close()
}
