package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"transfer/internal/transfer"
	"transfer/pkg/db"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

const activeRoutesQuery = `
SELECT r.id, r.airport_id, r.zone_id, r.direction, r.duration_minutes, r.is_active, a.timezone
FROM routes r
JOIN airports a ON a.id = r.airport_id
WHERE r.airport_id = $1
  AND r.zone_id = $2
  AND r.is_active = TRUE
  AND (r.direction = $3 OR r.direction = 'BOTH')
ORDER BY r.id`

const eligibleTariffsQuery = `
SELECT t.id, t.supplier_id, t.route_id, t.vehicle_type, t.currency,
       t.base_price, t.price_per_extra_pax, t.min_pax, t.max_pax,
       t.valid_from, t.valid_to, t.is_active, r.duration_minutes,
       s.id, s.name, s.rating::float8, s.rating_count, s.is_verified, s.is_active
FROM tariffs t
JOIN suppliers s ON s.id = t.supplier_id
JOIN routes r ON r.id = t.route_id
WHERE t.route_id = $1
  AND t.is_active = TRUE
  AND s.is_verified = TRUE
  AND s.is_active = TRUE
  AND COALESCE(t.min_pax, 1) <= $2
  AND (t.max_pax IS NULL OR t.max_pax >= $2)
  AND (t.valid_from IS NULL OR t.valid_from <= $3::date)
  AND (t.valid_to IS NULL OR t.valid_to >= $3::date)
ORDER BY t.id`

const activeRulesQuery = `
SELECT id, tariff_id, rule_type, day_of_week,
       to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
       season_from, season_to, hours_before_pickup::float8,
       percent_adjustment, fixed_adjustment, is_active
FROM tariff_rules
WHERE tariff_id = $1
  AND is_active = TRUE
ORDER BY id`

// PostgresCatalog reads routes, tariffs and rules. It only ever issues SELECTs.
type PostgresCatalog struct {
	db db.SQLExecutor
}

func NewPostgresCatalog(executor db.SQLExecutor) *PostgresCatalog {
	return &PostgresCatalog{db: executor}
}

func (c *PostgresCatalog) ActiveRoutes(ctx context.Context, airportID, zoneID int64, direction transfer.Direction) ([]transfer.Route, error) {
	rows, err := c.db.QueryContext(ctx, activeRoutesQuery, airportID, zoneID, string(direction))
	if err != nil {
		return nil, fmt.Errorf("query active routes: %w", err)
	}
	defer rows.Close()

	var routes []transfer.Route
	for rows.Next() {
		var (
			r   transfer.Route
			dir string
			tz  sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.AirportID, &r.ZoneID, &dir, &r.DurationMinutes, &r.IsActive, &tz); err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		r.Direction = transfer.Direction(dir)
		r.AirportTimezone = tz.String
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate routes: %w", err)
	}
	return routes, nil
}

func (c *PostgresCatalog) EligibleTariffs(ctx context.Context, routeID int64, totalPax int, pickupDate time.Time) ([]transfer.TariffWithSupplier, error) {
	rows, err := c.db.QueryContext(ctx, eligibleTariffsQuery, routeID, totalPax, pickupDate.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("query eligible tariffs: %w", err)
	}
	defer rows.Close()

	var tariffs []transfer.TariffWithSupplier
	for rows.Next() {
		var (
			tw                 transfer.TariffWithSupplier
			vehicle            string
			minPax, maxPax     sql.NullInt32
			validFrom, validTo sql.NullTime
			routeDuration      sql.NullInt32
		)
		err := rows.Scan(
			&tw.Tariff.ID, &tw.Tariff.SupplierID, &tw.Tariff.RouteID, &vehicle, &tw.Tariff.Currency,
			&tw.Tariff.BasePrice, &tw.Tariff.PricePerExtraPax, &minPax, &maxPax,
			&validFrom, &validTo, &tw.Tariff.IsActive, &routeDuration,
			&tw.Supplier.ID, &tw.Supplier.Name, &tw.Supplier.Rating, &tw.Supplier.RatingCount,
			&tw.Supplier.IsVerified, &tw.Supplier.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("scan tariff: %w", err)
		}
		tw.Tariff.VehicleType = transfer.VehicleType(vehicle)
		tw.Tariff.MinPax = intPtr(minPax)
		tw.Tariff.MaxPax = intPtr(maxPax)
		tw.Tariff.ValidFrom = timePtr(validFrom)
		tw.Tariff.ValidTo = timePtr(validTo)
		tw.Tariff.RouteDurationMin = intPtr(routeDuration)
		tariffs = append(tariffs, tw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tariffs: %w", err)
	}
	return tariffs, nil
}

func (c *PostgresCatalog) ActiveRules(ctx context.Context, tariffID int64) ([]transfer.RuleRecord, error) {
	rows, err := c.db.QueryContext(ctx, activeRulesQuery, tariffID)
	if err != nil {
		return nil, fmt.Errorf("query rules for tariff %d: %w", tariffID, err)
	}
	defer rows.Close()

	var rules []transfer.RuleRecord
	for rows.Next() {
		var (
			rec                  transfer.RuleRecord
			ruleType             string
			dayOfWeek            sql.NullInt32
			startTime, endTime   sql.NullString
			seasonFrom, seasonTo sql.NullTime
			hours                sql.NullFloat64
			percent, fixed       decimal.NullDecimal
		)
		err := rows.Scan(
			&rec.ID, &rec.TariffID, &ruleType, &dayOfWeek,
			&startTime, &endTime,
			&seasonFrom, &seasonTo, &hours,
			&percent, &fixed, &rec.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rec.RuleType = transfer.RuleType(ruleType)
		rec.DayOfWeek = intPtr(dayOfWeek)
		rec.StartTime = stringPtr(startTime)
		rec.EndTime = stringPtr(endTime)
		rec.SeasonFrom = timePtr(seasonFrom)
		rec.SeasonTo = timePtr(seasonTo)
		rec.HoursBeforePickup = floatPtr(hours)
		rec.PercentAdjustment = percent
		rec.FixedAdjustment = fixed
		rules = append(rules, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return rules, nil
}

func intPtr(n sql.NullInt32) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int32)
	return &v
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	return &f.Float64
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
