package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WeatherAPICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcbmap_weather_api_calls_total",
			Help: "Total historical weather API calls",
		},
		[]string{"status"},
	)

	WeatherAPILatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mcbmap_weather_api_latency_seconds",
			Help:    "Historical weather API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	WeatherFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mcbmap_weather_fallbacks_total",
			Help: "Times the synthetic weather fallback was used for a range",
		},
	)

	FootfallRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcbmap_footfall_rows_total",
			Help: "Footfall source rows processed during load",
		},
		[]string{"result"}, // "parsed" or "skipped"
	)

	FootfallFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcbmap_footfall_files_total",
			Help: "Footfall source files processed during load",
		},
		[]string{"status"}, // "ok" or "error"
	)

	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcbmap_analyses_total",
			Help: "Station analyses performed, by impact category",
		},
		[]string{"category"},
	)

	ArchiveRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcbmap_archive_requests_total",
			Help: "Analysis archive lookups",
		},
		[]string{"result"}, // "hit" or "miss"
	)
)
