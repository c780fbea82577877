package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Beliver-cell/Fantasy-luxe-store/config"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/cache"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/cleanup"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/database"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/handlers"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/logger"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/middleware"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/models"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/payment"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/producer"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/repository"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/router"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/service"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/storefront"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/token"
	gtransport "github.com/Beliver-cell/Fantasy-luxe-store/internal/transport/grpc"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// @Title Fantasy Luxe Store API
// @Version 1.0
// @Description Оформление заказов и оплата через Flutterwave
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	gateway := payment.NewClient(payment.Config{
		SecretKey: cfg.Gateway.SecretKey,
		BaseURL:   cfg.Gateway.BaseURL,
		Timeout:   cfg.Gateway.Timeout,
	}, log)
	if !gateway.Configured() {
		log.Warn("Ключ платёжного провайдера не задан: оформление заказов недоступно")
	}

	deps := service.Deps{
		Orders:  repos.Orders,
		Gateway: gateway,
		Auditor: service.NewLogAuditor(log),
	}

	// Каталог и корзины витрины живут в MongoDB
	if cfg.Mongo.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoClient, err := database.ConnectMongo(ctx, cfg.Mongo.URI, log)
		cancel()
		if err != nil {
			log.Fatal("failed to connect to mongo", zap.Error(err))
		}
		defer database.DisconnectMongo(mongoClient, log)

		storeDB := mongoClient.Database(cfg.Mongo.DB)
		var catalog service.CatalogReader = storefront.NewCatalog(storeDB, log)

		if cfg.Redis.Enabled {
			redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
			if err != nil {
				log.Fatal("failed to create redis client", zap.Error(err))
			}
			defer redisClient.Close()
			catalog = cache.NewCachedCatalog(catalog, redisClient, cfg.Redis.TTL, log)
			log.Info("Redis cache enabled")
		} else {
			log.Info("Redis cache disabled")
		}

		deps.Catalog = catalog
		deps.Carts = storefront.NewCarts(storeDB)
	} else {
		log.Info("MONGO_URI не задан: сверка с каталогом и очистка корзины отключены")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		bus := producer.NewKafkaEventBus(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic, cfg.Kafka.EmailTopic, log)
		defer bus.Close()
		deps.Events = bus
	} else {
		log.Info("KAFKA_BROKERS не задан: события заказов не публикуются")
	}

	deliveryFee, err := models.ToCents(cfg.Store.DeliveryCharge)
	if err != nil {
		log.Fatal("invalid DELIVERY_CHARGE", zap.Error(err))
	}

	orderSvc := service.NewOrderService(deps, service.Options{
		Currency:          cfg.Store.Currency,
		DeliveryFeeCents:  deliveryFee,
		FrontendURL:       cfg.Store.FrontendURL,
		StoreTitle:        cfg.Store.Title,
		LogoURL:           cfg.Store.LogoURL,
		StrictTransitions: cfg.Store.StrictTransitions,
	}, log)

	cleanupSvc := cleanup.NewCleanupService(repos.Orders, cfg.PendingOrderTTL, log)
	scheduler := cleanup.NewScheduler(cleanupSvc, cfg.CleanupInterval, log)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	scheduler.Start(cleanupCtx)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiterStop := make(chan struct{})
	go limiter.RunCleanup(5*time.Minute, limiterStop)

	r := router.Router(router.Deps{
		Orders:      handlers.NewOrderHandler(orderSvc, log),
		Verifier:    token.NewHSVerifier(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience),
		Limiter:     limiter,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})

	srv := &http.Server{
		Addr:              listenAddr(cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	healthSrv := gtransport.NewHealthServer(log)
	healthLis, err := net.Listen("tcp", cfg.GRPCHealthAddr)
	if err != nil {
		log.Fatal("failed to listen", zap.Error(err))
	}
	go func() {
		if err := healthSrv.Serve(healthLis); err != nil {
			log.Error("gRPC health server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()
	healthSrv.SetServing(true)

	<-quit
	log.Info("Shutting down HTTP server...")
	healthSrv.SetServing(false)

	// Останавливаем планировщик
	scheduler.Stop()
	cleanupCancel()
	close(limiterStop)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
	healthSrv.Stop(5 * time.Second)
	log.Info("HTTP server stopped gracefully")
}

// listenAddr принимает и "4000", и ":4000".
func listenAddr(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}
