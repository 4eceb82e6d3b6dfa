package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	streamsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cms_relay_streams_active",
		Help: "Number of event streams currently being relayed",
	})

	streamsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cms_relay_streams_total",
		Help: "Relayed streams by outcome",
	}, []string{"outcome"})

	bytesRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cms_relay_bytes_total",
		Help: "Bytes copied from upstream to clients",
	})

	eventsRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cms_relay_events_total",
		Help: "Named events relayed downstream",
	}, []string{"event"})
)
