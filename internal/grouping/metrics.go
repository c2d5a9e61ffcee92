// internal/grouping/metrics.go

package grouping

import (
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    runsTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "grouping_runs_total",
            Help: "Total number of group formation runs",
        },
        []string{"strategy", "result"},
    )

    groupsTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "grouping_groups_total",
            Help: "Candidate groups by outcome",
        },
        []string{"outcome"},
    )

    runDuration = promauto.NewHistogram(
        prometheus.HistogramOpts{
            Name:    "grouping_run_duration_seconds",
            Help:    "Duration of group formation runs",
            Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
        },
    )

    groupSize = promauto.NewHistogram(
        prometheus.HistogramOpts{
            Name:    "grouping_group_size",
            Help:    "Members per created group match",
            Buckets: prometheus.LinearBuckets(1, 1, 6),
        },
    )

    membershipDecisions = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "grouping_membership_decisions_total",
            Help: "Group match accept and decline decisions",
        },
        []string{"decision"},
    )
)

func RecordRun(strategy, result string, d time.Duration) {
    runsTotal.WithLabelValues(strategy, result).Inc()
    runDuration.Observe(d.Seconds())
}

func RecordGroupOutcome(outcome string) {
    groupsTotal.WithLabelValues(outcome).Inc()
}

func RecordGroupSize(n int) {
    groupSize.Observe(float64(n))
}

func RecordMembershipDecision(decision string) {
    membershipDecisions.WithLabelValues(decision).Inc()
}
