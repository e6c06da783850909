package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RatingsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookhub_ratings_submitted_total",
			Help: "Ratings accepted, by whether they created or replaced a record",
		},
		[]string{"result"},
	)

	FavouritesToggled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookhub_favourites_toggled_total",
			Help: "Favourite toggles, by resulting state",
		},
		[]string{"state"},
	)

	StatisticsFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookhub_statistics_fallbacks_total",
			Help: "Statistics computations that failed and were replaced by zero statistics",
		},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookhub_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookhub_live_connections",
			Help: "Open websocket connections on the activity feed",
		},
	)
)

func IncrementRatingsSubmitted(result string) {
	RatingsSubmitted.WithLabelValues(result).Inc()
}

func IncrementFavouritesToggled(state string) {
	FavouritesToggled.WithLabelValues(state).Inc()
}

func IncrementStatisticsFallbacks() {
	StatisticsFallbacks.Inc()
}

func IncrementRateLimited() {
	RateLimited.Inc()
}

func SetActiveConnections(count int64) {
	ActiveConnections.Set(float64(count))
}
