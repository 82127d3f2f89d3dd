package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hail", Name: "events_published_total", Help: "Events pushed through the fan-out dispatcher"},
		[]string{"event"},
	)
	EventDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hail", Name: "event_deliveries_total", Help: "Per-subscriber deliveries that reached an open connection"},
		[]string{"event"},
	)
	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hail", Name: "events_dropped_total", Help: "Events dropped because target resolution failed"},
		[]string{"event"},
	)

	WSSessions = promauto.NewGauge(
		prometheus.GaugeOpts{Namespace: "hail", Name: "ws_sessions", Help: "Open websocket sessions"},
	)
	DriversOnline = promauto.NewGauge(
		prometheus.GaugeOpts{Namespace: "hail", Name: "drivers_online", Help: "Drivers in the dispatch broadcast set"},
	)
)
