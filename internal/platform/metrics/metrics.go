// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comicgallery_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "comicgallery_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ComicMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comicgallery_comic_mutations_total",
			Help: "Successful comic mutations by operation",
		},
		[]string{"operation"},
	)

	Uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comicgallery_uploads_total",
			Help: "Upload relay attempts by result",
		},
		[]string{"result"},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comicgallery_login_attempts_total",
			Help: "Admin login attempts by result",
		},
		[]string{"result"},
	)
)

func RecordRequest(method, route, status string, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
