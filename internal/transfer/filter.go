package transfer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// tariffFilter holds the request-derived bounds so they are computed once per search
type tariffFilter struct {
	routeID    int64
	totalPax   int
	pickupDate string
}

func newTariffFilter(routeID int64, totalPax int, pickupDate time.Time) *tariffFilter {
	return &tariffFilter{
		routeID:    routeID,
		totalPax:   totalPax,
		pickupDate: pickupDate.Format(dateLayout),
	}
}

// matches returns true only if every eligibility condition holds
func (f *tariffFilter) matches(tw TariffWithSupplier) bool {
	t := tw.Tariff

	if t.RouteID != f.routeID || !t.IsActive {
		return false
	}

	// Supplier
	if !tw.Supplier.IsVerified || !tw.Supplier.IsActive {
		return false
	}

	// Capacity, a missing minimum means one passenger
	minPax := 1
	if t.MinPax != nil {
		minPax = *t.MinPax
	}
	if minPax > f.totalPax {
		return false
	}
	if t.MaxPax != nil && *t.MaxPax < f.totalPax {
		return false
	}

	// Validity window, compared as calendar dates
	if t.ValidFrom != nil && t.ValidFrom.Format(dateLayout) > f.pickupDate {
		return false
	}
	if t.ValidTo != nil && t.ValidTo.Format(dateLayout) < f.pickupDate {
		return false
	}

	return true
}

// FilterTariffs returns the route's bookable tariffs for the passenger count and
// local pickup date. The catalog already narrows in its query; rows are checked
// again here so every Catalog implementation yields the same candidate set.
func (e *Engine) FilterTariffs(ctx context.Context, routeID int64, totalPax int, pickupDate time.Time) ([]TariffWithSupplier, error) {
	ctx, span := e.tracer.Start(ctx, "transfer.filter_tariffs")
	defer span.End()

	candidates, err := e.catalog.EligibleTariffs(ctx, routeID, totalPax, pickupDate)
	if err != nil {
		return nil, recordErr(span, classifyCatalogError(ctx, "tariff lookup", err))
	}

	f := newTariffFilter(routeID, totalPax, pickupDate)
	eligible := make([]TariffWithSupplier, 0, len(candidates))
	for _, tw := range candidates {
		if f.matches(tw) {
			eligible = append(eligible, tw)
		}
	}

	span.SetAttributes(
		attribute.Int("transfer.tariffs.candidates", len(candidates)),
		attribute.Int("transfer.tariffs.eligible", len(eligible)),
	)
	return eligible, nil
}
