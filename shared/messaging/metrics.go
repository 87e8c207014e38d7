package messaging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_system_messages_published_total",
		Help: "Messages handed to the broker, by exchange and outcome",
	}, []string{"exchange", "status"})

	consumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_system_messages_consumed_total",
		Help: "Messages delivered to consumers, by queue and ack result",
	}, []string{"queue", "result"})

	consumerReconnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_system_consumer_reconnects_total",
		Help: "Mid-stream consumer reconnect cycles, by queue",
	}, []string{"queue"})
)
