// Package metrics defines the Prometheus collectors exported by billsplit.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "billsplit"

// Metrics groups the service's collectors. A nil *Metrics is valid and records
// nothing, which keeps engines usable in tests without a registry.
type Metrics struct {
	BillsCreated        *prometheus.CounterVec
	BillTransitions     *prometheus.CounterVec
	InvitationResponses *prometheus.CounterVec
	Payments            prometheus.Counter
	RecurringSpawned    prometheus.Counter
	Notifications       *prometheus.CounterVec
	RPCRequests         *prometheus.CounterVec
	RPCDuration         *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BillsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bills_created_total",
			Help:      "Bills created, by kind (one_time, monthly, template, recurring).",
		}, []string{"kind"}),
		BillTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bill_transitions_total",
			Help:      "Bill status transitions, by target status.",
		}, []string{"status"}),
		InvitationResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitation_responses_total",
			Help:      "Invitation responses, by action.",
		}, []string{"action"}),
		Payments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_total",
			Help:      "Participants marked as paid.",
		}),
		RecurringSpawned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recurring_spawned_total",
			Help:      "Bills spawned by the recurrence sweep.",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications published, by whether a subscriber received them.",
		}, []string{"delivered"}),
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
	}

	reg.MustRegister(
		m.BillsCreated,
		m.BillTransitions,
		m.InvitationResponses,
		m.Payments,
		m.RecurringSpawned,
		m.Notifications,
		m.RPCRequests,
		m.RPCDuration,
	)
	return m
}

func (m *Metrics) BillCreated(kind string) {
	if m == nil {
		return
	}
	m.BillsCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) Transition(status string) {
	if m == nil {
		return
	}
	m.BillTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) Response(action string) {
	if m == nil {
		return
	}
	m.InvitationResponses.WithLabelValues(action).Inc()
}

func (m *Metrics) Payment() {
	if m == nil {
		return
	}
	m.Payments.Inc()
}

func (m *Metrics) Spawned(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RecurringSpawned.Add(float64(n))
}

func (m *Metrics) Notification(delivered bool) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(strconv.FormatBool(delivered)).Inc()
}

// ObserveRPC records one handled RPC.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RPCRequests.WithLabelValues(procedure, code).Inc()
	m.RPCDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}
