package transfer

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
)

const (
	optionCodePrefix = "TRF-"
	optionCodeBytes  = 6

	CancellationPolicyText = "Free cancellation up to 24 hours before pickup. Later cancellations are refunded according to the supplier's policy."
)

// OptionCode derives the quote reference for one option. The tuple is length-prefixed
// before hashing so distinct tuples cannot serialise to the same bytes.
func OptionCode(tariffID, supplierID int64, vehicleType VehicleType, pickupTime string) string {
	h := sha256.New()
	for _, field := range []string{
		strconv.FormatInt(tariffID, 10),
		strconv.FormatInt(supplierID, 10),
		string(vehicleType),
		pickupTime,
	} {
		fmt.Fprintf(h, "%d:%s;", len(field), field)
	}
	sum := h.Sum(nil)
	return fmt.Sprintf("%s%X", optionCodePrefix, sum[:optionCodeBytes])
}

// Assemble builds the bookable option for a priced tariff. pickupTime is the string
// the traveler submitted.
func Assemble(tw TariffWithSupplier, price Money, route Route, pickupTime string) TransferOption {
	duration := route.DurationMinutes
	if tw.Tariff.RouteDurationMin != nil && *tw.Tariff.RouteDurationMin > 0 {
		duration = *tw.Tariff.RouteDurationMin
	}

	return TransferOption{
		Supplier: SupplierSummary{
			ID:          tw.Supplier.ID,
			Name:        tw.Supplier.Name,
			Rating:      tw.Supplier.Rating,
			RatingCount: tw.Supplier.RatingCount,
		},
		VehicleType:          tw.Tariff.VehicleType,
		Currency:             tw.Tariff.Currency,
		TotalPrice:           price,
		EstimatedDurationMin: duration,
		CancellationPolicy:   CancellationPolicyText,
		OptionCode:           OptionCode(tw.Tariff.ID, tw.Supplier.ID, tw.Tariff.VehicleType, pickupTime),
	}
}

// RankOptions sorts ascending by total price. Stable, so ties keep input order.
func RankOptions(options []TransferOption) {
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].TotalPrice.LessThan(options[j].TotalPrice.Decimal)
	})
}
