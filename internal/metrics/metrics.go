// Package metrics holds the Prometheus collectors of the room coordinator.
// All methods are nil-safe so components can run without metrics wired.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lounge"

type Metrics struct {
	reg prometheus.Gatherer

	roomsLive     prometheus.Gauge
	roomsCreated  prometheus.Counter
	roomsDeleted  *prometheus.CounterVec
	connects      *prometheus.CounterVec
	disconnects   *prometheus.CounterVec
	messages      *prometheus.CounterVec
	deliveries    prometheus.Counter
	dropped       prometheus.Counter
	cleanupChecks *prometheus.CounterVec
}

// New registers the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		roomsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "rooms_live",
			Help: "Rooms currently registered.",
		}),
		roomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rooms_created_total",
			Help: "Rooms created.",
		}),
		roomsDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rooms_deleted_total",
			Help: "Rooms deleted, by reason (leave, cleanup, admin).",
		}, []string{"reason"}),
		connects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "connects_total",
			Help: "Connect attempts, by result.",
		}, []string{"result"}),
		disconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "departures_total",
			Help: "Member departures, by kind (disconnect, leave).",
		}, []string{"kind"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "messages_total",
			Help: "Chat messages, by result.",
		}, []string{"result"}),
		deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "deliveries_total",
			Help: "Frames handed to member connections.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "deliveries_dropped_total",
			Help: "Frames dropped because a member's send buffer was full.",
		}),
		cleanupChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cleanup_checks_total",
			Help: "Grace period checks, by outcome (deleted, kept, gone).",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		m.roomsLive, m.roomsCreated, m.roomsDeleted, m.connects, m.disconnects,
		m.messages, m.deliveries, m.dropped, m.cleanupChecks,
	)
	return m
}

// Handler exposes the private registry at /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) RoomCreated() {
	if m == nil {
		return
	}
	m.roomsCreated.Inc()
	m.roomsLive.Inc()
}

func (m *Metrics) RoomDeleted(reason string) {
	if m == nil {
		return
	}
	m.roomsDeleted.WithLabelValues(reason).Inc()
	m.roomsLive.Dec()
}

func (m *Metrics) Connect(result string) {
	if m == nil {
		return
	}
	m.connects.WithLabelValues(result).Inc()
}

func (m *Metrics) Departure(kind string) {
	if m == nil {
		return
	}
	m.disconnects.WithLabelValues(kind).Inc()
}

func (m *Metrics) Message(result string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(result).Inc()
}

func (m *Metrics) Delivered(sent, dropped int) {
	if m == nil {
		return
	}
	m.deliveries.Add(float64(sent))
	m.dropped.Add(float64(dropped))
}

func (m *Metrics) CleanupCheck(outcome string) {
	if m == nil {
		return
	}
	m.cleanupChecks.WithLabelValues(outcome).Inc()
}
