package transfer

import (
	"context"

	"transfer/pkg/logger"

	"go.opentelemetry.io/otel/attribute"
)

// ResolveRoute picks the route serving the requested direction. When the catalog
// returns several, the first one wins.
func (e *Engine) ResolveRoute(ctx context.Context, airportID, zoneID int64, direction Direction) (Route, error) {
	ctx, span := e.tracer.Start(ctx, "transfer.resolve_route")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("transfer.airport_id", airportID),
		attribute.Int64("transfer.zone_id", zoneID),
		attribute.String("transfer.direction", string(direction)),
	)

	routes, err := e.catalog.ActiveRoutes(ctx, airportID, zoneID, direction)
	if err != nil {
		return Route{}, recordErr(span, classifyCatalogError(ctx, "route lookup", err))
	}

	for _, r := range routes {
		if r.IsActive && r.AirportID == airportID && r.ZoneID == zoneID && r.Direction.Serves(direction) {
			span.SetAttributes(attribute.Int64("transfer.route_id", r.ID))
			if len(routes) > 1 {
				e.logger.Debug("several routes match, using the first",
					logger.Field{Key: "route_id", Value: r.ID},
					logger.Field{Key: "candidates", Value: len(routes)},
				)
			}
			return r, nil
		}
	}

	return Route{}, recordErr(span, NewRouteNotFoundError(airportID, zoneID, direction))
}
