package transfer

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"
	_ "time/tzdata"

	"transfer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

// stubCatalog returns its rows unfiltered so the engine's own checks are exercised.
type stubCatalog struct {
	routes  []Route
	tariffs []TariffWithSupplier
	rules   map[int64][]RuleRecord

	routesErr  error
	tariffsErr error
	rulesErr   error
	rulesDelay time.Duration

	routeCalls  atomic.Int32
	tariffCalls atomic.Int32
	ruleCalls   atomic.Int32
}

func (s *stubCatalog) ActiveRoutes(ctx context.Context, airportID, zoneID int64, direction Direction) ([]Route, error) {
	s.routeCalls.Add(1)
	if s.routesErr != nil {
		return nil, s.routesErr
	}
	return s.routes, nil
}

func (s *stubCatalog) EligibleTariffs(ctx context.Context, routeID int64, totalPax int, pickupDate time.Time) ([]TariffWithSupplier, error) {
	s.tariffCalls.Add(1)
	if s.tariffsErr != nil {
		return nil, s.tariffsErr
	}
	return s.tariffs, nil
}

func (s *stubCatalog) ActiveRules(ctx context.Context, tariffID int64) ([]RuleRecord, error) {
	s.ruleCalls.Add(1)
	if s.rulesDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.rulesDelay):
		}
	}
	if s.rulesErr != nil {
		return nil, s.rulesErr
	}
	return s.rules[tariffID], nil
}

func newTestEngine(c Catalog, opts ...EngineOption) *Engine {
	opts = append([]EngineOption{WithClock(func() time.Time { return testNow })}, opts...)
	return NewEngine(c, logger.NewWithWriter("test", io.Discard), opts...)
}

func verifiedSupplier(id int64, name string) Supplier {
	return Supplier{ID: id, Name: name, Rating: 4.5, RatingCount: 10, IsVerified: true, IsActive: true}
}

func sedanTariff(id, routeID int64, price string) TariffWithSupplier {
	return TariffWithSupplier{
		Tariff: Tariff{
			ID: id, SupplierID: 100 + id, RouteID: routeID, VehicleType: VehicleSedan,
			Currency: "EUR", BasePrice: dec(price), MaxPax: intPtr(3), IsActive: true,
		},
		Supplier: verifiedSupplier(100+id, "Supplier"),
	}
}

func baseCatalog() *stubCatalog {
	return &stubCatalog{
		routes: []Route{{ID: 1, AirportID: 1, ZoneID: 2, Direction: DirectionBoth, DurationMinutes: 40, IsActive: true}},
		tariffs: []TariffWithSupplier{
			sedanTariff(10, 1, "80.00"),
		},
	}
}

func validRequest() SearchRequest {
	return SearchRequest{
		AirportID:  1,
		ZoneID:     2,
		Direction:  DirectionFromAirport,
		PickupTime: "2026-03-10T14:00:00Z",
		PaxAdults:  2,
		Currency:   "EUR",
	}
}

func TestEngine_Search_ValidatesBeforeCatalog(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(r *SearchRequest)
		wantMessage string
	}{
		{"pickup in the past", func(r *SearchRequest) { r.PickupTime = "2026-02-28T08:00:00Z" }, "must be in the future"},
		{"pickup equal to now", func(r *SearchRequest) { r.PickupTime = testNow.Format(time.RFC3339) }, "must be in the future"},
		{"pickup without offset", func(r *SearchRequest) { r.PickupTime = "2026-03-10T14:00:00" }, "UTC offset"},
		{"missing pickup", func(r *SearchRequest) { r.PickupTime = "" }, ""},
		{"no adults", func(r *SearchRequest) { r.PaxAdults = 0 }, ""},
		{"negative children", func(r *SearchRequest) { r.PaxChildren = -1 }, ""},
		{"unknown direction", func(r *SearchRequest) { r.Direction = "SIDEWAYS" }, ""},
		{"missing airport", func(r *SearchRequest) { r.AirportID = 0 }, ""},
		{"bad currency", func(r *SearchRequest) { r.Currency = "EURO" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := baseCatalog()
			req := validRequest()
			tt.mutate(&req)

			result, err := newTestEngine(catalog).Search(context.Background(), req)

			require.Error(t, err)
			assert.Nil(t, result)
			assert.Equal(t, ErrorCodeValidation, CodeOf(err))
			if tt.wantMessage != "" {
				assert.Contains(t, err.Error(), tt.wantMessage)
			}
			assert.Zero(t, catalog.routeCalls.Load())
			assert.Zero(t, catalog.tariffCalls.Load())
		})
	}
}

func TestEngine_Search_RouteDirection(t *testing.T) {
	catalog := baseCatalog()
	catalog.routes = []Route{{ID: 5, AirportID: 1, ZoneID: 2, Direction: DirectionToAirport, DurationMinutes: 40, IsActive: true}}
	catalog.tariffs = []TariffWithSupplier{sedanTariff(10, 5, "80.00")}
	engine := newTestEngine(catalog)

	t.Run("opposite direction is not served", func(t *testing.T) {
		req := validRequest()
		req.Direction = DirectionFromAirport

		_, err := engine.Search(context.Background(), req)

		var appErr *AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 404, appErr.Status)
		assert.Equal(t, ErrorCodeRouteNotFound, appErr.Code)
		assert.Zero(t, catalog.tariffCalls.Load())
	})

	t.Run("matching direction", func(t *testing.T) {
		req := validRequest()
		req.Direction = DirectionToAirport

		result, err := engine.Search(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, int64(5), result.Route.ID)
		require.Len(t, result.Options, 1)
		assert.Equal(t, "80.00", result.Options[0].TotalPrice.StringFixed(2))
	})
}

func TestEngine_Search_FirstMatchingRouteWins(t *testing.T) {
	catalog := baseCatalog()
	catalog.routes = []Route{
		{ID: 3, AirportID: 1, ZoneID: 2, Direction: DirectionBoth, IsActive: false},
		{ID: 4, AirportID: 1, ZoneID: 2, Direction: DirectionFromAirport, IsActive: true},
		{ID: 6, AirportID: 1, ZoneID: 2, Direction: DirectionBoth, IsActive: true},
	}
	catalog.tariffs = []TariffWithSupplier{sedanTariff(10, 4, "50")}

	result, err := newTestEngine(catalog).Search(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(4), result.Route.ID)
}

func TestEngine_Search_CapacityFiltering(t *testing.T) {
	minibus := TariffWithSupplier{
		Tariff: Tariff{
			ID: 20, RouteID: 1, VehicleType: VehicleMinibus, Currency: "EUR",
			BasePrice: dec("150"), MinPax: intPtr(4), MaxPax: intPtr(12), IsActive: true,
		},
		Supplier: verifiedSupplier(200, "Big Bus Co"),
	}
	catalog := baseCatalog()
	catalog.tariffs = append(catalog.tariffs, minibus)
	engine := newTestEngine(catalog)

	t.Run("two passengers", func(t *testing.T) {
		result, err := engine.Search(context.Background(), validRequest())
		require.NoError(t, err)
		require.Len(t, result.Options, 1)
		assert.Equal(t, VehicleSedan, result.Options[0].VehicleType)
	})

	t.Run("children count toward capacity", func(t *testing.T) {
		req := validRequest()
		req.PaxAdults = 2
		req.PaxChildren = 3

		result, err := engine.Search(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, result.Options, 1)
		assert.Equal(t, VehicleMinibus, result.Options[0].VehicleType)
	})
}

func TestEngine_Search_ExcludesIneligibleTariffs(t *testing.T) {
	unverified := sedanTariff(11, 1, "10")
	unverified.Supplier.IsVerified = false

	inactiveSupplier := sedanTariff(12, 1, "10")
	inactiveSupplier.Supplier.IsActive = false

	inactive := sedanTariff(13, 1, "10")
	inactive.Tariff.IsActive = false

	expired := sedanTariff(14, 1, "10")
	expired.Tariff.ValidTo = timePtr(date("2026-03-09"))

	notYet := sedanTariff(15, 1, "10")
	notYet.Tariff.ValidFrom = timePtr(date("2026-03-11"))

	lastDay := sedanTariff(16, 1, "90")
	lastDay.Tariff.ValidFrom = timePtr(date("2026-03-10"))
	lastDay.Tariff.ValidTo = timePtr(date("2026-03-10"))

	otherRoute := sedanTariff(17, 9, "10")

	catalog := baseCatalog()
	catalog.tariffs = append(catalog.tariffs, unverified, inactiveSupplier, inactive, expired, notYet, lastDay, otherRoute)

	result, err := newTestEngine(catalog).Search(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, 2, result.TariffsConsidered)
	require.Len(t, result.Options, 2)
	assert.Equal(t, "80.00", result.Options[0].TotalPrice.StringFixed(2))
	assert.Equal(t, "90.00", result.Options[1].TotalPrice.StringFixed(2))
}

func TestEngine_Search_NoTariffs(t *testing.T) {
	catalog := baseCatalog()
	catalog.tariffs = nil

	result, err := newTestEngine(catalog).Search(context.Background(), validRequest())

	require.NoError(t, err)
	assert.NotNil(t, result.Options)
	assert.Empty(t, result.Options)
}

func TestEngine_Search_AppliesRulesInAirportTime(t *testing.T) {
	catalog := baseCatalog()
	catalog.routes[0].AirportTimezone = "Europe/Istanbul"
	catalog.tariffs = []TariffWithSupplier{sedanTariff(10, 1, "100")}
	catalog.rules = map[int64][]RuleRecord{
		10: {
			{ID: 2, TariffID: 10, RuleType: RuleTypeTimeOfDay, StartTime: strPtr("14:00"), EndTime: strPtr("15:00"), FixedAdjustment: pct("5"), IsActive: true},
			{ID: 1, TariffID: 10, RuleType: RuleTypeDayOfWeek, DayOfWeek: intPtr(2), PercentAdjustment: pct("10"), IsActive: true},
		},
	}
	req := validRequest()
	// 14:30 in Istanbul, a Tuesday
	req.PickupTime = "2026-03-10T11:30:00Z"

	result, err := newTestEngine(catalog).Search(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, result.Options, 1)
	assert.Equal(t, "115.00", result.Options[0].TotalPrice.StringFixed(2))
}

func TestEngine_Search_SkipsMalformedRules(t *testing.T) {
	catalog := baseCatalog()
	catalog.tariffs = []TariffWithSupplier{sedanTariff(10, 1, "100")}
	catalog.rules = map[int64][]RuleRecord{
		10: {
			{ID: 1, TariffID: 10, RuleType: RuleTypeTimeOfDay, StartTime: strPtr("00:00"), EndTime: nil, PercentAdjustment: pct("50"), IsActive: true},
			{ID: 2, TariffID: 10, RuleType: RuleTypeDayOfWeek, DayOfWeek: intPtr(2), FixedAdjustment: pct("5"), IsActive: true},
			{ID: 3, TariffID: 10, RuleType: RuleTypeDayOfWeek, DayOfWeek: intPtr(2), PercentAdjustment: pct("100"), IsActive: false},
		},
	}

	result, err := newTestEngine(catalog).Search(context.Background(), validRequest())

	require.NoError(t, err)
	require.Len(t, result.Options, 1)
	assert.Equal(t, "105.00", result.Options[0].TotalPrice.StringFixed(2))
	assert.Equal(t, 1, result.RulesSkipped)
}

func TestEngine_Search_RanksByPriceKeepingTies(t *testing.T) {
	catalog := baseCatalog()
	catalog.tariffs = []TariffWithSupplier{
		sedanTariff(10, 1, "80.00"),
		sedanTariff(11, 1, "65.50"),
		sedanTariff(12, 1, "65.50"),
	}

	result, err := newTestEngine(catalog, WithWorkers(3)).Search(context.Background(), validRequest())

	require.NoError(t, err)
	require.Len(t, result.Options, 3)
	assert.Equal(t, OptionCode(11, 111, VehicleSedan, validRequest().PickupTime), result.Options[0].OptionCode)
	assert.Equal(t, OptionCode(12, 112, VehicleSedan, validRequest().PickupTime), result.Options[1].OptionCode)
	assert.Equal(t, OptionCode(10, 110, VehicleSedan, validRequest().PickupTime), result.Options[2].OptionCode)
}

func TestEngine_Search_Deterministic(t *testing.T) {
	catalog := baseCatalog()
	catalog.tariffs = nil
	catalog.rules = map[int64][]RuleRecord{}
	for i := int64(1); i <= 20; i++ {
		catalog.tariffs = append(catalog.tariffs, sedanTariff(i, 1, "60"))
		catalog.rules[i] = []RuleRecord{
			{ID: i, TariffID: i, RuleType: RuleTypeLastMinute, HoursBeforePickup: floatPtr(float64(i) * 12), PercentAdjustment: pct("7.5"), IsActive: true},
		}
	}

	first, err := newTestEngine(catalog, WithWorkers(1)).Search(context.Background(), validRequest())
	require.NoError(t, err)

	for range 5 {
		again, err := newTestEngine(catalog, WithWorkers(8)).Search(context.Background(), validRequest())
		require.NoError(t, err)
		assert.Equal(t, first.Options, again.Options)
	}
}

func TestEngine_Search_Timeout(t *testing.T) {
	catalog := baseCatalog()
	catalog.tariffs = []TariffWithSupplier{sedanTariff(10, 1, "80"), sedanTariff(11, 1, "90")}
	catalog.rulesDelay = 500 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := newTestEngine(catalog).Search(ctx, validRequest())

	require.Error(t, err)
	assert.Nil(t, result)
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrorCodeTimeout, appErr.Code)
	assert.Equal(t, 504, appErr.Status)
}

func TestEngine_Search_CatalogUnavailable(t *testing.T) {
	dbErr := errors.New("connection refused")

	tests := []struct {
		name   string
		mutate func(c *stubCatalog)
	}{
		{"routes", func(c *stubCatalog) { c.routesErr = dbErr }},
		{"tariffs", func(c *stubCatalog) { c.tariffsErr = dbErr }},
		{"rules", func(c *stubCatalog) { c.rulesErr = dbErr }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := baseCatalog()
			tt.mutate(catalog)

			result, err := newTestEngine(catalog).Search(context.Background(), validRequest())

			assert.Nil(t, result)
			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, ErrorCodeCatalogUnavailable, appErr.Code)
			assert.Equal(t, 500, appErr.Status)
			assert.ErrorIs(t, err, dbErr)
		})
	}
}
