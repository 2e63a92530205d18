package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"transfer/cfg"
	"transfer/internal/catalog"
	"transfer/internal/transfer"
	"transfer/pkg/broker"
	"transfer/pkg/cache"
	"transfer/pkg/db"
	"transfer/pkg/idgen"
	"transfer/pkg/logger"
	"transfer/pkg/telemetry"

	_ "transfer/cmd/transfer/docs" // swagger docs

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// @title           Transfer Search API
// @version         1.0
// @description     Airport transfer search with rule-based dynamic pricing.
// @BasePath        /
// @schemes         http
func main() {
	// ============
	// config
	// ============
	config, errCfg := cfg.Load()
	if errCfg != nil {
		log.Fatal(errCfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ============
	// logger
	// ============
	zlogger := logger.NewZeroLog(config.AppEnv)

	// ============
	// Otel
	// ============
	shutdownOtel, err := telemetry.Init(ctx, &config.Observability, zlogger)
	if err != nil {
		log.Fatalf("failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOtel(shutdownCtx); err != nil {
			zlogger.Error("failed to shutdown OpenTelemetry", logger.Field{Key: "err", Value: err})
		}
	}()

	// ============
	// Postgres
	// ============
	client, err := db.NewSQLClient(ctx, "pgx", config.Postgres.DSN(), db.PoolOptions{
		MaxOpenConns:    config.Postgres.MaxConns,
		MaxIdleConns:    config.Postgres.MaxConns / 2,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	// ============
	// Cache
	// ============
	quoteStore, closeCache, err := cache.NewRedisCache(ctx, cache.RedisOptions{
		Addr:     config.Redis.Addr(),
		Password: config.Redis.Password,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	// ============
	// Search ids
	// ============
	ids, err := idgen.NewSnowflake(config.SnowflakeNodeID)
	if err != nil {
		log.Fatal(err)
	}

	// ============
	// Quote events
	// ============
	var publisher transfer.EventPublisher
	if config.Kafka.Enabled() {
		producer := broker.NewProducer(broker.Config{
			Brokers: config.Kafka.Brokers,
			Topic:   config.Kafka.QuoteTopic,
		})
		defer producer.Close()
		publisher = producer
		zlogger.Info("quote events enabled", logger.Field{Key: "topic", Value: producer.Topic()})
	}

	// ============
	// Internal Service
	// ============
	engine := transfer.NewEngine(
		catalog.NewPostgresCatalog(client),
		zlogger,
		transfer.WithWorkers(config.PricingWorkers),
	)
	transferSvc := transfer.NewService(engine, quoteStore, config.QuoteTTLMinutes, ids, publisher, zlogger)
	transferHandler := transfer.NewTransferHandler(transferSvc, config.SearchTimeout)

	// ============
	// HTTP
	// ============
	r := gin.Default()
	r.Use(otelgin.Middleware(config.Observability.ServiceName))
	r.Use(RequestIDMiddleware())
	r.Use(TraceLoggerMiddleware(zlogger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	transferHandler.RegisterRoutes(r)
	initSwagger(r)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: config.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", config.AppPort),
		Handler:           corsHandler.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlogger.Info("server starting", logger.Field{Key: "addr", Value: srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlogger.Error("listen failed", logger.Field{Key: "err", Value: err})
			stop()
		}
	}()

	<-ctx.Done()
	zlogger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlogger.Error("server forced to shutdown", logger.Field{Key: "err", Value: err})
	}
}

func initSwagger(r *gin.Engine) {
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		html := `<!DOCTYPE html>
<html>
<head>
    <title>Transfer Search API</title>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
    <script id="api-reference" data-url="/swagger/doc.json"></script>
    <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`
		c.String(http.StatusOK, html)
	})
}
