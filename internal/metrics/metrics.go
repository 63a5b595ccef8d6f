package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Number of HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	ContentMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "content_mutations_total",
		Help: "Admin content mutations by resource and operation.",
	}, []string{"resource", "operation"})

	PublishedRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "content_published_rows_total",
		Help: "Rows flipped by publish/unpublish calls, by resource.",
	}, []string{"resource", "action"})

	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "media_uploads_total",
		Help: "Media uploads by outcome.",
	}, []string{"outcome"})

	PageBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "public_page_build_duration_seconds",
		Help:    "Time spent assembling the public page payload.",
		Buckets: prometheus.DefBuckets,
	})

	PageCacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "public_page_cache_total",
		Help: "Public page cache lookups by result.",
	}, []string{"result"})
)
