package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/database"

	"go.uber.org/zap"
)

type Config struct {
	Env            string
	Port           string
	GRPCHealthAddr string

	DB    DB
	Mongo Mongo
	Redis Redis
	Kafka Kafka
	JWT   JWT

	Gateway Gateway
	Store   Store

	PendingOrderTTL time.Duration
	CleanupInterval time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
}

type DB struct {
	database.Config
}

type Mongo struct {
	Enabled bool
	URI     string
	DB      string
}

type Redis struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type Kafka struct {
	Brokers     []string
	OrdersTopic string
	EmailTopic  string
}

type JWT struct {
	Secret   string
	Issuer   string
	Audience string
}

type Gateway struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

type Store struct {
	FrontendURL       string
	LogoURL           string
	Title             string
	Currency          string
	DeliveryCharge    float64
	StrictTransitions bool
}

func Load(log *zap.Logger) *Config {
	mongoURI := os.Getenv("MONGO_URI")
	return &Config{
		Env:            getEnvDefault("ENV", "production"),
		Port:           getEnv("APP_PORT", log),
		GRPCHealthAddr: getEnvDefault("GRPC_HEALTH_ADDR", ":50053"),
		DB:             LoadDB(log),
		Mongo: Mongo{
			Enabled: mongoURI != "",
			URI:     mongoURI,
			DB:      getEnvDefault("MONGO_DB", "e-commerce"),
		},
		Redis: Redis{
			Enabled:  os.Getenv("REDIS_ENABLED") == "true",
			Addr:     getEnvDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       atoiDefault(os.Getenv("REDIS_DB"), 0),
			TTL:      time.Duration(atoiDefault(os.Getenv("CACHE_TTL_SECONDS"), 60)) * time.Second,
		},
		Kafka: Kafka{
			Brokers:     splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			OrdersTopic: getEnvDefault("KAFKA_TOPIC_ORDERS", "orders"),
			EmailTopic:  getEnvDefault("KAFKA_TOPIC_EMAIL", "email"),
		},
		JWT: JWT{
			Secret:   getEnv("JWT_SECRET", log),
			Issuer:   os.Getenv("JWT_ISSUER"),
			Audience: os.Getenv("JWT_AUDIENCE"),
		},
		Gateway: Gateway{
			// пустой ключ допустим: сервис стартует, а оформление вернёт GatewayNotConfigured
			SecretKey: os.Getenv("FLUTTERWAVE_SECRET_KEY"),
			BaseURL:   getEnvDefault("FLUTTERWAVE_BASE_URL", "https://api.flutterwave.com/v3"),
			Timeout:   parseDurationWithDays(getEnvDefault("GATEWAY_TIMEOUT", "15s"), log),
		},
		Store: Store{
			FrontendURL:       getEnv("FRONTEND_URL", log),
			LogoURL:           os.Getenv("SITE_LOGO_URL"),
			Title:             getEnvDefault("STORE_TITLE", "Fantasy Luxe Payment"),
			Currency:          strings.ToUpper(getEnvDefault("CURRENCY", "NGN")),
			DeliveryCharge:    floatDefault(os.Getenv("DELIVERY_CHARGE"), 500),
			StrictTransitions: os.Getenv("STRICT_STATUS_TRANSITIONS") == "true",
		},
		PendingOrderTTL: LoadPendingOrderTTL(log),
		CleanupInterval: parseDurationWithDays(getEnvDefault("CLEANUP_INTERVAL", "30m"), log),
		RateLimitRPS:    floatDefault(os.Getenv("RATE_LIMIT_RPS"), 1),
		RateLimitBurst:  atoiDefault(os.Getenv("RATE_LIMIT_BURST"), 5),
		CORSOrigins:     splitAndTrim(getEnvDefault("CORS_ORIGINS", "*")),
	}
}

func (c *Config) IsDev() bool { return c.Env == "development" }

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("Обязательная переменная окружения не установлена", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return def
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func floatDefault(s string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return f
}

// parseDurationWithDays понимает суффикс "d" (дни) в дополнение к time.ParseDuration.
func parseDurationWithDays(s string, log *zap.Logger) time.Duration {
	d, err := ParseDuration(s)
	if err != nil {
		log.Error("Некорректная длительность в переменной окружения", zap.String("value", s), zap.Error(err))
		panic("invalid duration: " + s)
	}
	return d
}

func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
