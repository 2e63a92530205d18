package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

// DSN builds a postgres:// URL usable by both the pgx driver and golang-migrate.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type ObservabilityConfig struct {
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	SampleRatio  float64
}

type KafkaConfig struct {
	Brokers    []string
	QuoteTopic string
}

// Enabled reports whether quote events should be published at all.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type Config struct {
	AppEnv             string
	AppPort            string
	Postgres           PostgresConfig
	Redis              RedisConfig
	Observability      ObservabilityConfig
	Kafka              KafkaConfig
	QuoteTTLMinutes    int
	SearchTimeout      time.Duration
	PricingWorkers     int
	SnowflakeNodeID    int64
	CORSAllowedOrigins []string
}

func Load() (*Config, error) {
	var errs []error

	// A missing .env is fine, the environment may already carry everything
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.New("failed load cfg: " + err.Error())
	}

	appEnv := mustEnv("APP_ENV", &errs)
	appPort := envOr("APP_PORT", "8080")

	pgHost := mustEnv("POSTGRES_HOST", &errs)
	pgPort := envOr("POSTGRES_PORT", "5432")
	pgUser := mustEnv("POSTGRES_USER", &errs)
	pgPassword := mustEnv("POSTGRES_PASSWORD", &errs)
	pgDB := mustEnv("POSTGRES_DB", &errs)
	pgSSLMode := envOr("POSTGRES_SSLMODE", "disable")
	pgMaxConns := intEnv("POSTGRES_MAX_CONNS", 20, &errs)

	redisHost := mustEnv("REDIS_HOST", &errs)
	redisPort := envOr("REDIS_PORT", "6379")
	redisPassword := envOr("REDIS_PASSWORD", "")

	quoteTTLMinutes := intEnv("QUOTE_TTL_MINUTES", 30, &errs)
	searchTimeoutMs := intEnv("SEARCH_TIMEOUT_MS", 3000, &errs)
	pricingWorkers := intEnv("PRICING_WORKERS", 8, &errs)
	snowflakeNode := intEnv("SNOWFLAKE_NODE_ID", 1, &errs)

	serviceName := envOr("OTEL_SERVICE_NAME", "transfer-search")
	otlpEndpoint := envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	sampleRatio := floatEnv("OTEL_TRACES_SAMPLE_RATIO", 1.0, &errs)

	kafkaBrokers := listEnv("KAFKA_BROKERS")
	kafkaQuoteTopic := envOr("KAFKA_QUOTE_TOPIC", "transfer.quotes")

	corsOrigins := listEnv("CORS_ALLOWED_ORIGINS")

	if quoteTTLMinutes <= 0 {
		errs = append(errs, errors.New("invalid env: QUOTE_TTL_MINUTES must be positive"))
	}
	if searchTimeoutMs <= 0 {
		errs = append(errs, errors.New("invalid env: SEARCH_TIMEOUT_MS must be positive"))
	}
	if pricingWorkers <= 0 {
		errs = append(errs, errors.New("invalid env: PRICING_WORKERS must be positive"))
	}
	if sampleRatio < 0 || sampleRatio > 1 {
		errs = append(errs, errors.New("invalid env: OTEL_TRACES_SAMPLE_RATIO must be within [0,1]"))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Config{
		AppEnv:  appEnv,
		AppPort: appPort,
		Postgres: PostgresConfig{
			Host:     pgHost,
			Port:     pgPort,
			User:     pgUser,
			Password: pgPassword,
			DBName:   pgDB,
			SSLMode:  pgSSLMode,
			MaxConns: pgMaxConns,
		},
		Redis: RedisConfig{
			Host:     redisHost,
			Port:     redisPort,
			Password: redisPassword,
		},
		Observability: ObservabilityConfig{
			ServiceName:  serviceName,
			Environment:  appEnv,
			OTLPEndpoint: otlpEndpoint,
			SampleRatio:  sampleRatio,
		},
		Kafka: KafkaConfig{
			Brokers:    kafkaBrokers,
			QuoteTopic: kafkaQuoteTopic,
		},
		QuoteTTLMinutes:    quoteTTLMinutes,
		SearchTimeout:      time.Duration(searchTimeoutMs) * time.Millisecond,
		PricingWorkers:     pricingWorkers,
		SnowflakeNodeID:    int64(snowflakeNode),
		CORSAllowedOrigins: corsOrigins,
	}, nil
}

func mustEnv(key string, errs *[]error) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errs = append(*errs, errors.New("missing env: "+key))
	}
	return value
}

func envOr(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int, errs *[]error) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, errors.New("conversion failed env: "+key))
		return fallback
	}
	return n
}

func floatEnv(key string, fallback float64, errs *[]error) float64 {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		*errs = append(*errs, errors.New("conversion failed env: "+key))
		return fallback
	}
	return f
}

// listEnv splits a comma-separated value, dropping blanks
func listEnv(key string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
