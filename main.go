package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/CodeForFun2004/The-Chill-Cup-API/common/auth"
	"github.com/CodeForFun2004/The-Chill-Cup-API/common/logger"
	commonmw "github.com/CodeForFun2004/The-Chill-Cup-API/common/middleware"
	"github.com/CodeForFun2004/The-Chill-Cup-API/controllers"
	"github.com/CodeForFun2004/The-Chill-Cup-API/database"
	"github.com/CodeForFun2004/The-Chill-Cup-API/kafka"
	aws_pkg "github.com/CodeForFun2004/The-Chill-Cup-API/pkg/aws"
	"github.com/CodeForFun2004/The-Chill-Cup-API/repository"
	"github.com/CodeForFun2004/The-Chill-Cup-API/routes"
	"github.com/CodeForFun2004/The-Chill-Cup-API/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const serviceName = "chillcup-api"

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config load failed:", err)
		os.Exit(1)
	}

	// --- AWS setup ---
	awsCfg, awsErr := aws_pkg.LoadAWSConfig(context.Background(), cfg.AWSRegion, cfg.AWSEndpoint)

	var sink io.Writer
	if cfg.CloudWatchEnabled && awsErr == nil {
		cw, err := aws_pkg.NewCloudWatchLogsClient(context.Background(), awsCfg, cfg.CloudWatchLogGroup, serviceName)
		if err != nil {
			fmt.Fprintln(os.Stderr, "CloudWatch Logs disabled:", err)
		} else {
			sink = cw
		}
	}

	log, err := logger.New(cfg.AppEnv, sink)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	if awsErr != nil {
		log.Warn("AWS config unavailable, AWS integrations disabled", zap.Error(awsErr))
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- Database ---
	db, err := database.ConnectPostgres(database.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		DBName:   cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSLMode,
		TimeZone: cfg.PostgresTimeZone,
	}, log)
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}

	// --- Optional integrations ---
	orderOpts := services.OrderServiceOptions{
		IdempotencyTTL: cfg.IdempotencyTTL,
		VietQR: services.VietQRConfig{
			BankID:      cfg.VietQRBankID,
			AccountNo:   cfg.VietQRAccountNo,
			AccountName: cfg.VietQRAccountName,
			Template:    cfg.VietQRTemplate,
		},
	}

	var (
		redisClient *redis.Client
		dedup       services.Deduplicator
	)
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(rootCtx, cfg.RedisURL)
		if err != nil {
			log.Warn("Redis unavailable, idempotency keys disabled", zap.Error(err))
		} else {
			store := database.NewRedisStore(redisClient)
			orderOpts.Idempotency = store
			dedup = store
		}
	}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaOrderTopic, log)
		orderOpts.Producer = producer
	}

	var snsClient aws_pkg.SNSPublisher
	var metricsClient *aws_pkg.MetricsClient
	if awsErr == nil {
		snsClient = aws_pkg.NewSNSClient(awsCfg)
		orderOpts.SNSClient = snsClient
		orderOpts.SNSTopicArn = cfg.OrderSNSTopicARN
		metricsClient = aws_pkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, cfg.MetricsEnabled)
		orderOpts.Metrics = metricsClient
	}

	var stripeService *services.StripeService
	if cfg.StripeSecretKey != "" {
		stripeService = services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
		orderOpts.Cards = stripeService
	}

	// --- Dependency injection ---
	repos := repository.NewRepositories(db)
	txManager := repository.NewGormTxManager(db)

	cartService := services.NewCartService(txManager, cfg.DeliveryFee, log)
	discountService := services.NewDiscountService(txManager, repos, cfg.DeliveryFee, snsClient, cfg.DiscountSNSTopicARN, log)
	orderService := services.NewOrderService(txManager, repos, orderOpts, log)
	loyaltyService := services.NewLoyaltyService(repos, log)
	shipperService := services.NewShipperService(repos, orderService, log)

	ctrls := routes.Controllers{
		Cart:     controllers.NewCartController(cartService, discountService),
		Order:    controllers.NewOrderController(orderService),
		Discount: controllers.NewDiscountController(discountService),
		Loyalty:  controllers.NewLoyaltyController(loyaltyService, discountService),
		Shipper:  controllers.NewShipperController(shipperService),
	}
	if stripeService != nil {
		ctrls.Payment = controllers.NewPaymentController(stripeService, orderService, log)
	}

	// --- Background workers ---
	var workers sync.WaitGroup
	if cfg.PaymentQueueURL != "" && awsErr == nil {
		consumer := services.NewPaymentConfirmationConsumer(
			aws_pkg.NewSQSConsumer(awsCfg, cfg.PaymentQueueURL, log),
			orderService,
			dedup,
			log,
		)
		workers.Add(1)
		go func() {
			defer workers.Done()
			consumer.Start(rootCtx)
		}()
	}

	limiter := commonmw.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitPerMinute/4+1, 10*time.Minute)
	go limiter.StartCleanup(rootCtx)

	// --- HTTP router ---
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	controllers.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(commonmw.RequestID())
	r.Use(commonmw.RequestLogger(log))
	r.Use(commonmw.MetricsMiddleware(metricsClient, serviceName))
	r.Use(commonmw.SecurityHeaders())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(limiter.Middleware())
	r.Use(commonmw.Timeout(cfg.RequestTimeout))

	routes.RegisterRoutes(r, auth.NewTokenParser(cfg.JWTSecret), ctrls)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": serviceName})
	})

	// --- HTTP server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("Chill Cup API started", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	httpShutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(httpShutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	stop()
	workers.Wait()

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error("Kafka writer close error", zap.Error(err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Redis close error", zap.Error(err))
		}
	}
	if err := database.Close(db); err != nil {
		log.Error("Database close error", zap.Error(err))
	}

	log.Info("Chill Cup API stopped gracefully")
}
