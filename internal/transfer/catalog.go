package transfer

import (
	"context"
	"time"
)

// Catalog is the read-only view of routes, tariffs and rules the engine prices from.
// Implementations must not write.
type Catalog interface {
	// ActiveRoutes returns active routes for the pair whose direction equals
	// direction or is BOTH, in a stable order.
	ActiveRoutes(ctx context.Context, airportID, zoneID int64, direction Direction) ([]Route, error)
	// EligibleTariffs returns the route's tariffs joined with their supplier,
	// narrowed by activity, verification, capacity and validity at pickupDate.
	EligibleTariffs(ctx context.Context, routeID int64, totalPax int, pickupDate time.Time) ([]TariffWithSupplier, error)
	// ActiveRules returns the tariff's active pricing rules as stored.
	ActiveRules(ctx context.Context, tariffID int64) ([]RuleRecord, error)
}
