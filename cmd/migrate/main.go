package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"transfer/cfg"
	"transfer/pkg/db"
	"transfer/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	direction := flag.String("direction", "up", "up or down")
	steps := flag.Int("steps", 0, "number of migrations to apply, 0 for all")
	source := flag.String("source", "file://db/migrations", "migration source URL")
	flag.Parse()

	// ============
	// config
	// ============
	config, errCfg := cfg.Load()
	if errCfg != nil {
		log.Fatal(errCfg)
	}
	zlogger := logger.NewZeroLog(config.AppEnv)

	// ============
	// Init DB client
	// ============
	client, err := db.NewSQLClient(context.Background(), "pgx", config.Postgres.DSN(), db.PoolOptions{MaxOpenConns: 1})
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	// =========
	// Migrate
	// =========
	driver, err := postgres.WithInstance(client.DB(), &postgres.Config{})
	if err != nil {
		log.Fatal(err)
	}
	m, err := migrate.NewWithDatabaseInstance(*source, "postgres", driver)
	if err != nil {
		log.Fatal(err)
	}

	if err := run(m, *direction, *steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal(err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatal(err)
	}
	zlogger.Info("migrations applied",
		logger.Field{Key: "direction", Value: *direction},
		logger.Field{Key: "version", Value: int64(version)},
		logger.Field{Key: "dirty", Value: dirty},
	)
}

func run(m *migrate.Migrate, direction string, steps int) error {
	switch {
	case steps > 0 && direction == "down":
		return m.Steps(-steps)
	case steps > 0:
		return m.Steps(steps)
	case direction == "down":
		return m.Down()
	default:
		return m.Up()
	}
}
