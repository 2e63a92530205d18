package transfer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transfer_searches_total",
		Help: "Transfer searches by outcome code",
	}, []string{"outcome"})

	rulesSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transfer_tariff_rules_skipped_total",
		Help: "Malformed tariff rules left out of pricing",
	}, []string{"rule_type"})

	optionsReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "transfer_search_options",
		Help:    "Options returned per successful search",
		Buckets: prometheus.LinearBuckets(0, 5, 10),
	})

	quoteEventsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transfer_quote_events_failed_total",
		Help: "Quote events that could not be published",
	})
)

func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return string(CodeOf(err))
}
