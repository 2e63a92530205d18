package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"transfer/pkg/cache"
	"transfer/pkg/idgen"
	"transfer/pkg/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	quoteKeyPrefix      = "transfer:quote:"
	quoteEventType      = "transfer.search.quoted"
	quoteEventProducer  = "transfer-search"
	quotePublishTimeout = 5 * time.Second
)

// EventPublisher delivers keyed messages to the quote topic.
type EventPublisher interface {
	SendMessage(ctx context.Context, key, value []byte) error
}

// QuoteEvent is the envelope published after a successful search.
type QuoteEvent struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	CorrelationID string          `json:"correlation_id"`
	Producer      string          `json:"producer"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

type quotePayload struct {
	Request SearchRequest    `json:"request"`
	RouteID int64            `json:"routeId"`
	Options []TransferOption `json:"options"`
}

// Service wraps the engine with the request-facing extras: search ids, quote
// storage for the booking flow and quote events. None of it feeds back into pricing.
type Service struct {
	engine         *Engine
	cache          cache.Cache
	ttl            time.Duration
	ids            idgen.Generator
	publisher      EventPublisher
	logger         logger.Logger
	searchDuration metric.Float64Histogram
}

// NewService builds the service. publisher may be nil to disable quote events.
func NewService(engine *Engine, store cache.Cache, ttlMinutes int, ids idgen.Generator, publisher EventPublisher, log logger.Logger) *Service {
	histogram, err := otel.Meter("transfer/internal/transfer").Float64Histogram(
		"transfer.search.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Wall time of transfer searches"),
	)
	if err != nil {
		log.Warn("failed to create search duration histogram", logger.Field{Key: "err", Value: err})
	}

	return &Service{
		engine:         engine,
		cache:          store,
		ttl:            time.Duration(ttlMinutes) * time.Minute,
		ids:            ids,
		publisher:      publisher,
		logger:         log,
		searchDuration: histogram,
	}
}

func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	startTime := time.Now()
	searchID := s.ids.NewID()

	result, err := s.engine.Search(ctx, req)
	elapsed := time.Since(startTime)
	s.observe(ctx, elapsed, err)
	if err != nil {
		s.logSearchFailure(searchID, req, err)
		return nil, err
	}
	optionsReturned.Observe(float64(len(result.Options)))

	response := &SearchResponse{
		Options: result.Options,
		Metadata: Metadata{
			SearchID:          searchID,
			RouteID:           result.Route.ID,
			TotalResults:      len(result.Options),
			TariffsConsidered: result.TariffsConsidered,
			RulesSkipped:      result.RulesSkipped,
			SearchTimeMs:      elapsed.Milliseconds(),
		},
	}

	s.logger.Info("transfer search completed",
		logger.Field{Key: "search_id", Value: searchID},
		logger.Field{Key: "route_id", Value: result.Route.ID},
		logger.Field{Key: "options", Value: len(result.Options)},
		logger.Field{Key: "rules_skipped", Value: result.RulesSkipped},
		logger.Field{Key: "elapsed", Value: elapsed},
	)

	quotedAt := startTime.UTC()
	s.storeQuotes(ctx, searchID, req, result.Options, quotedAt)
	s.publishQuotes(ctx, searchID, req, result, quotedAt)

	return response, nil
}

// quoteKey scopes a quote to its search. Option codes repeat across searches for
// the same tariff and pickup while passenger counts, and so prices, differ.
func quoteKey(searchID, code string) string {
	return quoteKeyPrefix + searchID + ":" + code
}

// GetQuote returns the quote a search produced for an option code while it is still valid.
func (s *Service) GetQuote(ctx context.Context, searchID, code string) (*Quote, error) {
	cached, err := s.cache.Get(ctx, quoteKey(searchID, code))
	if errors.Is(err, cache.ErrNotFound) {
		return nil, NewQuoteNotFoundError(searchID, code)
	}
	if err != nil {
		return nil, NewInternalError("quote store unavailable", err)
	}

	var quote Quote
	if err := json.Unmarshal([]byte(cached), &quote); err != nil {
		s.logger.Error("failed to unmarshal cached quote",
			logger.Field{Key: "search_id", Value: searchID},
			logger.Field{Key: "option_code", Value: code},
			logger.Field{Key: "err", Value: err},
		)
		return nil, NewQuoteNotFoundError(searchID, code)
	}
	return &quote, nil
}

// storeQuotes caches every option by code. Failures are logged, the search still succeeds.
func (s *Service) storeQuotes(ctx context.Context, searchID string, req SearchRequest, options []TransferOption, quotedAt time.Time) {
	for _, opt := range options {
		quote := Quote{SearchID: searchID, Option: opt, Request: req, QuotedAt: quotedAt}
		b, err := json.Marshal(quote)
		if err != nil {
			s.logger.Error("failed to marshal quote", logger.Field{Key: "err", Value: err})
			continue
		}
		if err := s.cache.Set(ctx, quoteKey(searchID, opt.OptionCode), string(b), s.ttl); err != nil {
			s.logger.Error("failed to cache quote",
				logger.Field{Key: "option_code", Value: opt.OptionCode},
				logger.Field{Key: "err", Value: err},
			)
		}
	}
}

// publishQuotes sends the quote event in the background, detached from request cancellation.
func (s *Service) publishQuotes(ctx context.Context, searchID string, req SearchRequest, result *SearchResult, quotedAt time.Time) {
	if s.publisher == nil || len(result.Options) == 0 {
		return
	}

	payload, err := json.Marshal(quotePayload{Request: req, RouteID: result.Route.ID, Options: result.Options})
	if err != nil {
		s.logger.Error("failed to marshal quote payload", logger.Field{Key: "err", Value: err})
		return
	}
	event, err := json.Marshal(QuoteEvent{
		ID:            uuid.NewString(),
		Type:          quoteEventType,
		CorrelationID: searchID,
		Producer:      quoteEventProducer,
		OccurredAt:    quotedAt,
		Payload:       payload,
	})
	if err != nil {
		s.logger.Error("failed to marshal quote event", logger.Field{Key: "err", Value: err})
		return
	}

	bgCtx := context.WithoutCancel(ctx)
	go func() {
		pubCtx, cancel := context.WithTimeout(bgCtx, quotePublishTimeout)
		defer cancel()
		if err := s.publisher.SendMessage(pubCtx, []byte(searchID), event); err != nil {
			quoteEventsFailed.Inc()
			s.logger.Error("failed to publish quote event",
				logger.Field{Key: "search_id", Value: searchID},
				logger.Field{Key: "err", Value: err},
			)
		}
	}()
}

func (s *Service) observe(ctx context.Context, elapsed time.Duration, err error) {
	outcome := outcomeLabel(err)
	searchesTotal.WithLabelValues(outcome).Inc()
	if s.searchDuration != nil {
		s.searchDuration.Record(ctx, float64(elapsed.Microseconds())/1000,
			metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func (s *Service) logSearchFailure(searchID string, req SearchRequest, err error) {
	fields := []logger.Field{
		{Key: "search_id", Value: searchID},
		{Key: "airport_id", Value: req.AirportID},
		{Key: "zone_id", Value: req.ZoneID},
		{Key: "direction", Value: string(req.Direction)},
		{Key: "code", Value: string(CodeOf(err))},
		{Key: "err", Value: err},
	}

	switch CodeOf(err) {
	case ErrorCodeValidation, ErrorCodeRouteNotFound:
		s.logger.Info("transfer search rejected", fields...)
	default:
		s.logger.Error("transfer search failed", fields...)
	}
}
