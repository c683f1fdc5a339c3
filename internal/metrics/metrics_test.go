package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.BillCreated("one_time")
	m.BillCreated("one_time")
	m.Transition("finalized")
	m.Response("accept")
	m.Payment()
	m.Spawned(3)
	m.Spawned(0)
	m.Notification(true)
	m.Notification(false)
	m.ObserveRPC("/billsplit.v1.BillService/CreateBill", "ok", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BillsCreated.WithLabelValues("one_time")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BillTransitions.WithLabelValues("finalized")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InvitationResponses.WithLabelValues("accept")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Payments))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecurringSpawned))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RPCRequests.WithLabelValues("/billsplit.v1.BillService/CreateBill", "ok")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RPCDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.BillCreated("monthly")
		m.Transition("paid")
		m.Response("reject")
		m.Payment()
		m.Spawned(1)
		m.Notification(true)
		m.ObserveRPC("p", "ok", time.Second)
	})
}
