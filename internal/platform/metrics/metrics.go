// Package metrics declares the prometheus collectors shared by the sync
// pipeline and the query API
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "comicvault"

var (
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Upstream catalog requests by resource and status (or \"error\" for transport failures)",
	}, []string{"resource", "status"})

	ImportPages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_pages_total",
		Help:      "Upstream pages committed by the importer",
	}, []string{"entity"})

	ImportRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_records_total",
		Help:      "Records seen by the importer by outcome (inserted, skipped, dropped)",
	}, []string{"entity", "outcome"})

	LinkRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "link_rows_total",
		Help:      "Relations written by the linker by pass and outcome",
	}, []string{"pass", "outcome"})

	SearchDocs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_docs_total",
		Help:      "Documents pushed to the search index by outcome",
	}, []string{"index", "outcome"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Wall time of pipeline stages",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 14),
	}, []string{"stage"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Query cache lookups by result",
	}, []string{"result"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "API requests by route pattern, method and status",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "API latency by route pattern",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

// ObserveStage records the elapsed time since start for stage
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Handler serves the default registry
func Handler() http.Handler { return promhttp.Handler() }
