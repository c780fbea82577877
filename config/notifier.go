package config

import (
	"os"
	"strconv"
	"time"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/database"

	"go.uber.org/zap"
)

type Notifier struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPSSL      bool

	TMPLDir string

	KafkaBrokers []string
	KafkaGroupID string
	KafkaTopic   string
}

func LoadNotifier(log *zap.Logger) *Notifier {
	return &Notifier{
		SMTPHost:     getEnv("SMTP_HOST", log),
		SMTPPort:     getEnvInt("SMTP_PORT", log),
		SMTPUser:     getEnv("SMTP_USER", log),
		SMTPPassword: getEnv("SMTP_PASSWORD", log),
		SMTPFrom:     getEnv("SMTP_FROM", log),
		SMTPSSL:      getEnvDefault("SMTP_SSL", "true") == "true",
		TMPLDir:      getEnvDefault("TMPL_DIR", "templates"),
		KafkaBrokers: splitAndTrim(os.Getenv("KAFKA_BROKERS")),
		KafkaGroupID: getEnvDefault("KAFKA_GROUP_ID", "fantasy-luxe-notifier"),
		KafkaTopic:   getEnvDefault("KAFKA_TOPIC_EMAIL", "email"),
	}
}

// LoadDB читает только параметры Postgres: миграциям и разовой очистке
// не нужны ключи провайдера и JWT.
func LoadDB(log *zap.Logger) DB {
	return DB{
		Config: database.Config{
			Host:     getEnv("DB_HOST", log),
			Port:     getEnv("DB_PORT", log),
			User:     getEnv("DB_USER", log),
			Password: getEnv("DB_PASSWORD", log),
			Name:     getEnv("DB_NAME", log),
			SSLMode:  getEnv("DB_SSLMODE", log),
		},
	}
}

func LoadPendingOrderTTL(log *zap.Logger) time.Duration {
	return parseDurationWithDays(getEnvDefault("PENDING_ORDER_TTL", "2d"), log)
}

func getEnvInt(key string, log *zap.Logger) int {
	valStr := getEnv(key, log)
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Error("Ошибка преобразования переменной окружения в int", zap.String("key", key), zap.Error(err))
		panic("invalid int value for environment variable: " + key)
	}
	return val
}
