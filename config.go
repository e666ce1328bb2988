package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	aws_pkg "github.com/CodeForFun2004/The-Chill-Cup-API/pkg/aws"
	"github.com/joho/godotenv"
)

const (
	dbSecretName  = "chillcup/DB_CREDENTIALS"
	appSecretName = "chillcup/APP_SECRETS"
)

// Config holds all configuration for the API.
type Config struct {
	Port   string
	AppEnv string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	RedisURL        string
	KafkaBrokers    []string
	KafkaOrderTopic string

	AWSRegion           string
	AWSEndpoint         string
	UseSecrets          bool
	OrderSNSTopicARN    string
	DiscountSNSTopicARN string
	PaymentQueueURL     string
	CloudWatchEnabled   bool
	CloudWatchLogGroup  string
	CloudWatchNamespace string
	MetricsEnabled      bool

	JWTSecret           string
	StripeSecretKey     string
	StripeWebhookSecret string

	VietQRBankID      string
	VietQRAccountNo   string
	VietQRAccountName string
	VietQRTemplate    string

	DeliveryFee        int64
	AllowedOrigins     []string
	RateLimitPerMinute int
	IdempotencyTTL     time.Duration
	RequestTimeout     time.Duration
}

// LoadConfig reads configuration from environment variables with optional
// Secrets Manager override.
func LoadConfig() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg := &Config{
		Port:   getEnv("PORT", "8080"),
		AppEnv: getEnv("APP_ENV", "development"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Ho_Chi_Minh"),

		RedisURL:        os.Getenv("REDIS_URL"),
		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic: getEnv("KAFKA_ORDER_TOPIC", "chillcup.orders"),

		AWSRegion:           getEnv("AWS_REGION", "ap-southeast-1"),
		AWSEndpoint:         os.Getenv("AWS_ENDPOINT"),
		UseSecrets:          getEnvBool("AWS_USE_SECRETS", false),
		OrderSNSTopicARN:    os.Getenv("ORDER_SNS_TOPIC_ARN"),
		DiscountSNSTopicARN: os.Getenv("DISCOUNT_SNS_TOPIC_ARN"),
		PaymentQueueURL:     os.Getenv("PAYMENT_CONFIRMATION_QUEUE_URL"),
		CloudWatchEnabled:   getEnvBool("CLOUDWATCH_ENABLED", false),
		CloudWatchLogGroup:  getEnv("CLOUDWATCH_LOG_GROUP", "/chillcup/api"),
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", "ChillCup"),
		MetricsEnabled:      getEnvBool("METRICS_ENABLED", false),

		JWTSecret:           os.Getenv("JWT_SECRET"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		VietQRBankID:      os.Getenv("VIETQR_BANK_ID"),
		VietQRAccountNo:   os.Getenv("VIETQR_ACCOUNT_NO"),
		VietQRAccountName: os.Getenv("VIETQR_ACCOUNT_NAME"),
		VietQRTemplate:    getEnv("VIETQR_TEMPLATE", "compact2"),

		DeliveryFee:        int64(getEnvInt("DELIVERY_FEE", 10000)),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		IdempotencyTTL:     getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
	}

	// Override credentials from Secrets Manager when running on AWS
	if cfg.UseSecrets {
		if awsCfg, err := aws_pkg.LoadAWSConfig(context.Background(), cfg.AWSRegion, cfg.AWSEndpoint); err == nil {
			applySecrets(cfg, aws_pkg.NewSecretsClient(awsCfg))
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type secretReader interface {
	GetSecretJSON(ctx context.Context, name string, out any) error
}

func applySecrets(cfg *Config, sm secretReader) {
	ctx := context.Background()

	var db map[string]string
	if err := sm.GetSecretJSON(ctx, dbSecretName, &db); err == nil {
		override(&cfg.PostgresUser, db["POSTGRES_USER"])
		override(&cfg.PostgresPassword, db["POSTGRES_PASSWORD"])
		override(&cfg.PostgresDB, db["POSTGRES_DB"])
		override(&cfg.PostgresHost, db["POSTGRES_HOST"])
		override(&cfg.PostgresPort, db["POSTGRES_PORT"])
	}

	var app map[string]string
	if err := sm.GetSecretJSON(ctx, appSecretName, &app); err == nil {
		override(&cfg.JWTSecret, app["JWT_SECRET"])
		override(&cfg.StripeSecretKey, app["STRIPE_SECRET_KEY"])
		override(&cfg.StripeWebhookSecret, app["STRIPE_WEBHOOK_SECRET"])
	}
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (c *Config) validate() error {
	if c.PostgresUser == "" || c.PostgresPassword == "" || c.PostgresDB == "" || c.PostgresHost == "" {
		return fmt.Errorf("database config incomplete")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.DeliveryFee < 0 {
		return fmt.Errorf("DELIVERY_FEE must not be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
