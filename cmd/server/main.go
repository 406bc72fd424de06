package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subzcrib/billing-platform/config"
	"github.com/subzcrib/billing-platform/internal/api/rest"
	"github.com/subzcrib/billing-platform/internal/auth"
	"github.com/subzcrib/billing-platform/internal/kafka"
	"github.com/subzcrib/billing-platform/internal/kafka/producer"
	"github.com/subzcrib/billing-platform/internal/metrics"
	"github.com/subzcrib/billing-platform/internal/repository"
	"github.com/subzcrib/billing-platform/internal/repository/postgres"
	"github.com/subzcrib/billing-platform/internal/service"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

var log *logger.Logger

func init() {
	// .env is optional
	_ = godotenv.Load()

	logLevel := logger.INFO
	if os.Getenv("DEBUG") == "true" {
		logLevel = logger.DEBUG
	}
	log = logger.New(logLevel)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Prometheus
	promRegistry := prometheus.NewRegistry()
	billingMetrics := metrics.NewBillingMetrics(promRegistry, log)
	systemMetrics := metrics.NewSystemMetrics(promRegistry, log)

	systemMetrics.StartRecording(15 * time.Second)
	defer systemMetrics.Stop()

	// Persistence. Subscriptions and users live in Postgres; the
	// remaining repositories are the in-memory implementations until
	// their tables land.
	var (
		subscriptionRepo repository.SubscriptionRepository
		userRepo         repository.UserRepository
	)

	dbPool, err := postgres.NewConnection(ctx, cfg.Database.GetDSN(), log)
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	if err := postgres.EnsureSchema(ctx, dbPool); err != nil {
		log.Fatal("Failed to ensure database schema: %v", err)
	}

	subscriptionRepo = postgres.NewSubscriptionRepository(dbPool, log)
	userRepo = postgres.NewUserRepository(dbPool, log)

	customerRepo := repository.NewInMemoryCustomerRepository(log)
	productRepo := repository.NewInMemoryProductRepository(log)
	merchantRepo := repository.NewInMemoryMerchantRepository(log)
	invoiceRepo := repository.NewInMemoryInvoiceRepository(log)

	// Redis cache in front of the subscription repository
	var cache *repository.RedisCacheRepository
	var reportCache service.ReportInvalidator
	if cfg.Redis.Enabled {
		cache, err = repository.NewRedisCacheRepository(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis: %v", err)
		}
		defer cache.Close()

		subscriptionRepo = repository.NewCachedSubscriptionRepository(subscriptionRepo, cache, log)
		reportCache = cache
	}

	// Kafka producer for billing events
	billingProducer := producer.NewNoopBillingProducer(log)
	if cfg.Kafka.Enabled {
		kafkaConfig := kafka.NewConfig(cfg.Kafka.Brokers)
		saramaConfig := kafka.NewSaramaConfig(kafkaConfig)

		kafkaProducer, err := sarama.NewSyncProducer(kafkaConfig.Brokers, saramaConfig)
		if err != nil {
			log.Fatal("Failed to create Kafka producer: %v", err)
		}
		defer kafkaProducer.Close()

		billingProducer = producer.NewKafkaBillingProducer(kafkaProducer, log)
	}

	// Auth
	tokenTTL := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, tokenTTL)
	gate := auth.NewGate()

	// Services
	svcs := rest.Services{
		Auth:         service.NewAuthService(userRepo, merchantRepo, customerRepo, issuer, log),
		Subscription: service.NewSubscriptionService(subscriptionRepo, customerRepo, productRepo, gate, billingProducer, billingMetrics, reportCache, log),
		Customer:     service.NewCustomerService(customerRepo, gate, log),
		Product:      service.NewProductService(productRepo, subscriptionRepo, gate, log),
		Merchant:     service.NewMerchantService(merchantRepo, gate, log),
		Analytics:    service.NewAnalyticsService(subscriptionRepo, invoiceRepo, customerRepo, gate, cache, billingMetrics, log),
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := rest.SetupRouter(svcs, issuer, promRegistry, log)
	server := rest.NewServer(router, cfg, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
