// internal/matching/metrics.go

package matching

import (
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    swipesTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "matching_swipes_total",
            Help: "Total number of swipes recorded",
        },
        []string{"target", "action"},
    )

    matchesTotal = promauto.NewCounter(
        prometheus.CounterOpts{
            Name: "matching_matches_total",
            Help: "Total number of matches created",
        },
    )

    unmatchesTotal = promauto.NewCounter(
        prometheus.CounterOpts{
            Name: "matching_unmatches_total",
            Help: "Total number of matches deactivated",
        },
    )

    swipeDuration = promauto.NewHistogram(
        prometheus.HistogramOpts{
            Name:    "matching_swipe_duration_seconds",
            Help:    "Time spent recording a profile swipe including the match check",
            Buckets: prometheus.DefBuckets,
        },
    )
)

func RecordSwipe(target string, action Action) {
    swipesTotal.WithLabelValues(target, string(action)).Inc()
}

func RecordMatch() {
    matchesTotal.Inc()
}

func RecordUnmatch() {
    unmatchesTotal.Inc()
}

func RecordSwipeDuration(d time.Duration) {
    swipeDuration.Observe(d.Seconds())
}
