package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"transfer/cfg"
	"transfer/pkg/db"
	"transfer/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type seedStatement struct {
	name  string
	query string
}

// demoCatalog is an Istanbul airport with two zones, three suppliers and a few rules.
var demoCatalog = []seedStatement{
	{"airports", `INSERT INTO airports (id, code, name, timezone) VALUES
		(1, 'IST', 'Istanbul Airport', 'Europe/Istanbul'),
		(2, 'SAW', 'Sabiha Gokcen', 'Europe/Istanbul')`},
	{"zones", `INSERT INTO zones (id, city, country, name, center_lat, center_lng) VALUES
		(1, 'Istanbul', 'TR', 'Sultanahmet', 41.0054, 28.9768),
		(2, 'Istanbul', 'TR', 'Taksim', 41.0370, 28.9850)`},
	{"routes", `INSERT INTO routes (id, airport_id, zone_id, direction, duration_minutes, is_active) VALUES
		(1, 1, 1, 'BOTH', 55, TRUE),
		(2, 1, 2, 'FROM_AIRPORT', 45, TRUE),
		(3, 2, 1, 'TO_AIRPORT', 70, TRUE)`},
	{"suppliers", `INSERT INTO suppliers (id, name, rating, rating_count, is_verified, is_active) VALUES
		(1, 'Bosphorus Transfers', 4.80, 1250, TRUE, TRUE),
		(2, 'Golden Horn Shuttle', 4.35, 310, TRUE, TRUE),
		(3, 'Unverified Cabs', 3.10, 12, FALSE, TRUE)`},
	{"tariffs", `INSERT INTO tariffs (id, supplier_id, route_id, vehicle_type, currency, base_price, price_per_extra_pax, min_pax, max_pax, valid_from, valid_to, is_active) VALUES
		(1, 1, 1, 'SEDAN', 'EUR', 45.00, NULL, NULL, 3, NULL, NULL, TRUE),
		(2, 1, 1, 'VAN', 'EUR', 60.00, 2.50, 2, 7, NULL, NULL, TRUE),
		(3, 2, 1, 'MINIBUS', 'EUR', 95.00, 1.00, 4, 14, '2026-01-01', '2026-12-31', TRUE),
		(4, 2, 1, 'VIP', 'EUR', 120.00, NULL, NULL, 4, NULL, NULL, TRUE),
		(5, 3, 1, 'SEDAN', 'EUR', 20.00, NULL, NULL, 3, NULL, NULL, TRUE),
		(6, 1, 2, 'SEDAN', 'EUR', 40.00, NULL, NULL, 3, NULL, NULL, TRUE)`},
	{"tariff_rules", `INSERT INTO tariff_rules (id, tariff_id, rule_type, day_of_week, start_time, end_time, season_from, season_to, hours_before_pickup, percent_adjustment, fixed_adjustment, is_active) VALUES
		(1, 1, 'TIME_OF_DAY', NULL, '22:00', '23:59', NULL, NULL, NULL, 20.000, NULL, TRUE),
		(2, 1, 'TIME_OF_DAY', NULL, '00:00', '05:59', NULL, NULL, NULL, 20.000, NULL, TRUE),
		(3, 1, 'DAY_OF_WEEK', 6, NULL, NULL, NULL, NULL, NULL, NULL, 5.00, TRUE),
		(4, 2, 'SEASON', NULL, NULL, NULL, '2026-06-15', '2026-09-15', NULL, 15.000, NULL, TRUE),
		(5, 2, 'LAST_MINUTE', NULL, NULL, NULL, NULL, NULL, 6, 10.000, 3.00, TRUE),
		(6, 4, 'TIME_OF_DAY', NULL, '18:00', NULL, NULL, NULL, NULL, 10.000, NULL, TRUE)`},
}

var sequences = []string{"airports", "zones", "routes", "suppliers", "tariffs", "tariff_rules"}

func main() {
	config, errCfg := cfg.Load()
	if errCfg != nil {
		log.Fatal(errCfg)
	}
	zlogger := logger.NewZeroLog(config.AppEnv)

	ctx := context.Background()
	client, err := db.NewSQLClient(ctx, "pgx", config.Postgres.DSN(), db.PoolOptions{MaxOpenConns: 2})
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	if err := seed(ctx, client); err != nil {
		zlogger.Error("seed failed, nothing was written", logger.Field{Key: "err", Value: err})
		log.Fatal(err)
	}
	zlogger.Info("demo catalog loaded", logger.Field{Key: "tables", Value: len(demoCatalog)})
}

// seed writes the whole demo catalog in one transaction.
func seed(ctx context.Context, executor db.SQLExecutor) error {
	return executor.WithTransaction(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable},
		func(ctx context.Context, tx *sql.Tx) error {
			for _, stmt := range demoCatalog {
				if _, err := tx.ExecContext(ctx, stmt.query); err != nil {
					return fmt.Errorf("seed %s: %w", stmt.name, err)
				}
			}
			// explicit ids leave the serial sequences behind
			for _, table := range sequences {
				q := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT MAX(id) FROM %s))", table, table)
				if _, err := tx.ExecContext(ctx, q); err != nil {
					return fmt.Errorf("reset %s sequence: %w", table, err)
				}
			}
			return nil
		})
}
