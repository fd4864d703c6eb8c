// Package metrics exposes Prometheus collectors for the feed and theme flows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FeedLoads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_feed_loads_total",
		Help: "Feed loads by final state",
	}, []string{"state"})
	FetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "portfolio_feed_fetch_duration_seconds",
		Help:    "Time spent fetching the repository list",
		Buckets: prometheus.DefBuckets,
	})
	ThemeToggles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_theme_toggles_total",
		Help: "Theme toggles by resulting theme",
	}, []string{"theme"})
)

func init() {
	prometheus.MustRegister(
		FeedLoads,
		FetchDuration,
		ThemeToggles,
	)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
