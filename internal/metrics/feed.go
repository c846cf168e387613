// SPDX-License-Identifier: MIT
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	feedLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidshare_feed_loads_total",
		Help: "Feed loads by source",
	}, []string{"source"}) // source=store|cache|fallback

	feedLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vidshare_feed_load_duration_seconds",
		Help:    "Time spent loading feeds from storage",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	realtimeEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidshare_realtime_events_total",
		Help: "Realtime video-created events by direction",
	}, []string{"direction"}) // direction=published|received|dropped

	realtimeSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vidshare_realtime_subscribers",
		Help: "Current number of realtime subscribers",
	})

	rateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidshare_rate_limit_rejections_total",
		Help: "Requests refused by a rate limiter",
	}, []string{"limiter"})
)

// RecordFeedLoad counts where a feed came from.
func RecordFeedLoad(source string) {
	feedLoads.WithLabelValues(source).Inc()
}

// ObserveFeedLoad records the storage latency of a feed read.
func ObserveFeedLoad(seconds float64) {
	feedLoadDuration.Observe(seconds)
}

// RecordRealtimeEvent counts a realtime event.
func RecordRealtimeEvent(direction string) {
	realtimeEvents.WithLabelValues(direction).Inc()
}

// AddRealtimeSubscribers moves the subscriber gauge by delta.
func AddRealtimeSubscribers(delta float64) {
	realtimeSubscribers.Add(delta)
}

// RecordRateLimitRejection counts a refused request.
func RecordRateLimitRejection(limiter string) {
	rateLimitRejections.WithLabelValues(limiter).Inc()
}
