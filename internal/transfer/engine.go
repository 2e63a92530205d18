package transfer

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"transfer/pkg/logger"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 8

// Engine prices transfer options from catalog data. It holds no per-request state
// and never writes, so one Engine serves all requests concurrently.
type Engine struct {
	catalog  Catalog
	logger   logger.Logger
	validate *validator.Validate
	tracer   trace.Tracer
	workers  int
	now      func() time.Time
}

type EngineOption func(*Engine)

// WithWorkers bounds how many tariffs are priced at once.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(catalog Catalog, log logger.Logger, opts ...EngineOption) *Engine {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	e := &Engine{
		catalog:  catalog,
		logger:   log,
		validate: v,
		tracer:   otel.Tracer("transfer/internal/transfer"),
		workers:  defaultWorkers,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type SearchResult struct {
	Route             Route
	Options           []TransferOption
	TariffsConsidered int
	RulesSkipped      int
}

// Search runs route resolution, tariff filtering, per-tariff pricing and ranking.
// Requests are validated before the catalog is touched.
func (e *Engine) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	now := e.now()

	pickup, err := e.ValidateRequest(req, now)
	if err != nil {
		return nil, err
	}

	route, err := e.ResolveRoute(ctx, req.AirportID, req.ZoneID, req.Direction)
	if err != nil {
		return nil, err
	}

	loc := route.Location()
	totalPax := req.TotalPax()

	tariffs, err := e.FilterTariffs(ctx, route.ID, totalPax, pickup.In(loc))
	if err != nil {
		return nil, err
	}

	prices, skipped, err := e.priceTariffs(ctx, tariffs, totalPax, NewPickup(pickup, loc, now))
	if err != nil {
		return nil, err
	}

	options := make([]TransferOption, 0, len(tariffs))
	for i, tw := range tariffs {
		options = append(options, Assemble(tw, prices[i], route, req.PickupTime))
	}
	RankOptions(options)

	return &SearchResult{
		Route:             route,
		Options:           options,
		TariffsConsidered: len(tariffs),
		RulesSkipped:      skipped,
	}, nil
}

// ValidateRequest checks the request shape and that pickup is strictly after now.
// pickupTime must carry its UTC offset: validation runs before the route, and so the
// airport's zone, is known.
func (e *Engine) ValidateRequest(req SearchRequest, now time.Time) (time.Time, error) {
	if err := e.validate.Struct(req); err != nil {
		return time.Time{}, NewValidationError(describeValidation(err))
	}

	pickup, err := time.Parse(time.RFC3339, req.PickupTime)
	if err != nil {
		return time.Time{}, NewValidationError("pickupTime must be an RFC 3339 timestamp with a UTC offset, e.g. 2026-03-10T14:00:00+03:00")
	}
	if !pickup.After(now) {
		return time.Time{}, NewValidationError("pickupTime must be in the future")
	}

	return pickup, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "gte", "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be %s %s", fe.Field(), tagSymbol(fe.Tag()), fe.Param()))
		case "len":
			msgs = append(msgs, fmt.Sprintf("%s must be %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func tagSymbol(tag string) string {
	if tag == "gt" {
		return ">"
	}
	return ">="
}

// priceTariffs prices every tariff on a bounded pool. Each worker writes only its own
// slot so the output keeps input order for the stable ranking.
func (e *Engine) priceTariffs(ctx context.Context, tariffs []TariffWithSupplier, totalPax int, pickup Pickup) ([]Money, int, error) {
	ctx, span := e.tracer.Start(ctx, "transfer.price_tariffs")
	defer span.End()
	span.SetAttributes(attribute.Int("transfer.tariffs", len(tariffs)))

	prices := make([]Money, len(tariffs))
	skipped := make([]int, len(tariffs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range tariffs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			price, n, err := e.priceTariff(gctx, tariffs[i], totalPax, pickup)
			if err != nil {
				return err
			}
			prices[i] = price
			skipped[i] = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, recordErr(span, classifyCatalogError(ctx, "rule lookup", err))
	}
	// a deadline that fires after the last worker finished still voids the search
	if err := ctx.Err(); err != nil {
		return nil, 0, recordErr(span, NewTimeoutError(err))
	}

	total := 0
	for _, n := range skipped {
		total += n
	}
	span.SetAttributes(attribute.Int("transfer.rules.skipped", total))
	return prices, total, nil
}

// priceTariff fetches and decodes one tariff's rules and computes its price.
// It returns the number of rules skipped as malformed.
func (e *Engine) priceTariff(ctx context.Context, tw TariffWithSupplier, totalPax int, pickup Pickup) (Money, int, error) {
	records, err := e.catalog.ActiveRules(ctx, tw.Tariff.ID)
	if err != nil {
		return Money{}, 0, fmt.Errorf("rules for tariff %d: %w", tw.Tariff.ID, err)
	}

	rules := make([]Rule, 0, len(records))
	skipped := 0
	for _, rec := range records {
		if !rec.IsActive {
			continue
		}
		rule, err := DecodeRule(rec)
		if err != nil {
			skipped++
			rulesSkippedTotal.WithLabelValues(string(rec.RuleType)).Inc()
			e.logger.Warn("tariff rule skipped",
				logger.Field{Key: "tariff_id", Value: tw.Tariff.ID},
				logger.Field{Key: "rule_id", Value: rec.ID},
				logger.Field{Key: "rule_type", Value: string(rec.RuleType)},
				logger.Field{Key: "reason", Value: err.Error()},
			)
			continue
		}
		rules = append(rules, rule)
	}
	orderRules(rules)

	return ComputePrice(tw.Tariff, totalPax, rules, pickup), skipped, nil
}

// classifyCatalogError separates an expired or cancelled request from a failing catalog.
func classifyCatalogError(ctx context.Context, op string, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return NewTimeoutError(err)
	}
	return NewCatalogUnavailableError(op, err)
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(CodeOf(err)))
	return err
}
