package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_DeliversToEverySubscription(t *testing.T) {
	hub := NewHub(4)
	first, cancelFirst := hub.Subscribe("alice")
	defer cancelFirst()
	second, cancelSecond := hub.Subscribe("alice")
	defer cancelSecond()

	ev := Event{Type: EventBillInvitation, Data: Data{BillID: "b1", BillTitle: "Dinner"}}
	assert.True(t, hub.Notify("alice", ev))

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, "b1", (<-first).Data.BillID)
	assert.Equal(t, EventBillInvitation, (<-second).Type)
}

func TestHub_NoSubscriber(t *testing.T) {
	hub := NewHub(4)
	assert.False(t, hub.Notify("bob", Event{Type: EventBillResponse}))
}

func TestHub_FullBufferDrops(t *testing.T) {
	hub := NewHub(1)
	ch, cancel := hub.Subscribe("alice")
	defer cancel()

	assert.True(t, hub.Notify("alice", Event{Title: "one"}))
	assert.False(t, hub.Notify("alice", Event{Title: "two"}))

	assert.Equal(t, "one", (<-ch).Title)
	assert.Empty(t, ch)
}

func TestHub_CancelClosesAndUnregisters(t *testing.T) {
	hub := NewHub(0)
	ch, cancel := hub.Subscribe("alice")
	assert.Equal(t, 1, hub.Subscribers("alice"))

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.Subscribers("alice"))
	assert.False(t, hub.Notify("alice", Event{}))
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard.Notify("anyone", Event{}))
}
