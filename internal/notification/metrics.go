// internal/notification/metrics.go

package notification

import (
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var deliveries = promauto.NewCounterVec(
    prometheus.CounterOpts{
        Name: "notifications_sent_total",
        Help: "Notification deliveries by channel, kind and outcome",
    },
    []string{"channel", "kind", "status"},
)

func RecordDelivery(channel Channel, kind Kind, err error) {
    status := "success"
    if err != nil {
        status = "failure"
    }
    deliveries.WithLabelValues(string(channel), string(kind), status).Inc()
}
