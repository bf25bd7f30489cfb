// Package metrics exposes the service's Prometheus collectors. They are
// registered on the default registry and scraped from a dedicated listener.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_ws_connections",
		Help: "Currently open websocket connections.",
	})

	RoomJoins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_room_joins_total",
		Help: "Total joinChat subscriptions.",
	})

	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_sent_total",
		Help: "Messages accepted and persisted.",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_events_published_total",
		Help: "Realtime events published, by event name.",
	}, []string{"event"})
)

// Handler returns the scrape handler for the metrics listener.
func Handler() http.Handler {
	return promhttp.Handler()
}
