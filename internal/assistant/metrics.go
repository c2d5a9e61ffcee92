// internal/assistant/metrics.go

package assistant

import (
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var assistantRequests = promauto.NewCounterVec(
    prometheus.CounterOpts{
        Name: "assistant_requests_total",
        Help: "Questions answered by the assistant, by detected intent",
    },
    []string{"intent"},
)

func RecordRequest(intent Intent) {
    assistantRequests.WithLabelValues(string(intent)).Inc()
}
