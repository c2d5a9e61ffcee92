// internal/messaging/metrics.go

package messaging

import (
    "strconv"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    messagesSent = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "chat_messages_sent_total",
            Help: "Chat messages stored, split by author kind",
        },
        []string{"ai"},
    )

    activeConnections = promauto.NewGauge(
        prometheus.GaugeOpts{
            Name: "chat_websocket_connections",
            Help: "Currently connected websocket clients",
        },
    )

    broadcastFailures = promauto.NewCounter(
        prometheus.CounterOpts{
            Name: "chat_broadcast_failures_total",
            Help: "Events that could not be published or decoded",
        },
    )
)

func RecordMessage(isAI bool) {
    messagesSent.WithLabelValues(strconv.FormatBool(isAI)).Inc()
}

func RecordBroadcastFailure() {
    broadcastFailures.Inc()
}
