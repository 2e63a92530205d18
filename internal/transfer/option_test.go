package transfer

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionCode(t *testing.T) {
	const pickup = "2026-03-10T14:00:00+03:00"
	base := OptionCode(10, 20, VehicleSedan, pickup)

	t.Run("format", func(t *testing.T) {
		assert.Regexp(t, regexp.MustCompile(`^TRF-[0-9A-F]{12}$`), base)
	})

	t.Run("same input, same code", func(t *testing.T) {
		assert.Equal(t, base, OptionCode(10, 20, VehicleSedan, pickup))
	})

	t.Run("any change gives a new code", func(t *testing.T) {
		assert.NotEqual(t, base, OptionCode(11, 20, VehicleSedan, pickup))
		assert.NotEqual(t, base, OptionCode(10, 21, VehicleSedan, pickup))
		assert.NotEqual(t, base, OptionCode(10, 20, VehicleVan, pickup))
		assert.NotEqual(t, base, OptionCode(10, 20, VehicleSedan, "2026-03-10T11:00:00Z"))
	})

	t.Run("field boundaries matter", func(t *testing.T) {
		assert.NotEqual(t, OptionCode(1, 23, VehicleSedan, pickup), OptionCode(12, 3, VehicleSedan, pickup))
	})
}

func TestAssemble_DurationFallback(t *testing.T) {
	route := Route{ID: 1, DurationMinutes: 45}
	tw := TariffWithSupplier{
		Tariff:   Tariff{ID: 10, VehicleType: VehicleVan, Currency: "EUR"},
		Supplier: Supplier{ID: 20, Name: "Blue Line", Rating: 4.6, RatingCount: 120},
	}

	opt := Assemble(tw, NewMoney(dec("42")), route, "2026-03-10T14:00:00Z")
	assert.Equal(t, 45, opt.EstimatedDurationMin)
	assert.Equal(t, SupplierSummary{ID: 20, Name: "Blue Line", Rating: 4.6, RatingCount: 120}, opt.Supplier)
	assert.Equal(t, CancellationPolicyText, opt.CancellationPolicy)
	assert.Equal(t, OptionCode(10, 20, VehicleVan, "2026-03-10T14:00:00Z"), opt.OptionCode)

	tw.Tariff.RouteDurationMin = intPtr(55)
	assert.Equal(t, 55, Assemble(tw, NewMoney(dec("42")), route, "2026-03-10T14:00:00Z").EstimatedDurationMin)
}

func TestRankOptions_StableOnTies(t *testing.T) {
	options := []TransferOption{
		{OptionCode: "A", TotalPrice: NewMoney(dec("80.00"))},
		{OptionCode: "B", TotalPrice: NewMoney(dec("65.50"))},
		{OptionCode: "C", TotalPrice: NewMoney(dec("65.50"))},
	}

	RankOptions(options)

	codes := make([]string, len(options))
	for i, o := range options {
		codes[i] = o.OptionCode
	}
	assert.Equal(t, []string{"B", "C", "A"}, codes)
}
