package live

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"talksy/contract"
	"talksy/domain"
	"talksy/domain/event"
	"talksy/observability"
)

func newTestRouter() (*Router, *Registry, *observability.Stats) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := NewRegistry()
	stats := observability.NewStats()
	return NewRouter(log, registry, stats), registry, stats
}

func TestRouter_Deliver_To_User_Reaches_All_Devices_And_No_Others(t *testing.T) {
	req := require.New(t)
	router, registry, _ := newTestRouter()
	userA := uuid.NewString()
	userB := uuid.NewString()
	h1 := &fakeSession{name: "a1"}
	h2 := &fakeSession{name: "a2"}
	hb := &fakeSession{name: "b1"}

	// Given user A online with two devices and user B with one
	registry.Register(userA, h1)
	registry.Register(userA, h2)
	registry.Register(userB, hb)

	// When B's message to A is fanned out
	evt := event.DirectMessage{Message: domain.Message{SenderID: userB, ReceiverID: userA}}
	router.Deliver(context.Background(), evt, contract.ToUser(userA))

	// Then both of A's devices got exactly one copy, B's got none
	req.Equal([]event.Event{evt}, h1.events)
	req.Equal([]event.Event{evt}, h2.events)
	req.Empty(hb.events)
}

func TestRouter_Deliver_To_User_With_Zero_Sessions_Is_Silent(t *testing.T) {
	router, _, _ := newTestRouter()

	// Offline receivers get nothing from the live layer; they pull history later.
	router.Deliver(context.Background(), event.Typing{SenderID: "a", ReceiverID: "b", Active: true}, contract.ToUser("b"))
}

func TestRouter_Deliver_To_Group_Duplicates_Per_Device(t *testing.T) {
	req := require.New(t)
	router, registry, _ := newTestRouter()
	userA := uuid.NewString()
	groupID := uuid.NewString()
	h1 := &fakeSession{name: "a1"}
	h2 := &fakeSession{name: "a2"}
	outsider := &fakeSession{name: "x"}

	// Given both of A's devices subscribed to the group, plus an outsider
	registry.Register(userA, h1)
	registry.Register(userA, h2)
	registry.Register(uuid.NewString(), outsider)
	registry.Subscribe(groupID, h1)
	registry.Subscribe(groupID, h2)

	evt := event.GroupMessage{Message: domain.Message{GroupID: groupID}}
	router.Deliver(context.Background(), evt, contract.ToGroup(groupID))

	// Then delivery is per connection, not deduplicated by user
	req.Len(h1.events, 1)
	req.Len(h2.events, 1)
	req.Empty(outsider.events)
}

func TestRouter_Deliver_Swallows_Stale_Session_Failures(t *testing.T) {
	req := require.New(t)
	router, registry, stats := newTestRouter()
	groupID := uuid.NewString()
	dead := &fakeSession{name: "dead", failing: true}
	alive := &fakeSession{name: "alive"}

	registry.Subscribe(groupID, dead)
	registry.Subscribe(groupID, alive)

	// When fan-out hits a broken transport not yet reaped
	router.Deliver(context.Background(), event.GroupMessage{}, contract.ToGroup(groupID))

	// Then the healthy session is unaffected and the failure only counted
	req.Len(alive.events, 1)
	req.Equal(uint64(1), stats.Snapshot(0).DroppedEvents)
	req.Equal(uint64(1), stats.Snapshot(0).DeliveredEvents)
}

func TestRouter_Deliver_After_Group_Member_Disconnects(t *testing.T) {
	req := require.New(t)
	router, registry, _ := newTestRouter()
	groupID := uuid.NewString()
	h := &fakeSession{}
	stay := &fakeSession{name: "stay"}

	// Given a session that joined the group, then disconnected
	registry.Register(uuid.NewString(), h)
	registry.Subscribe(groupID, h)
	registry.Subscribe(groupID, stay)
	registry.Remove(h)

	router.Deliver(context.Background(), event.GroupMessage{}, contract.ToGroup(groupID))

	// Then no delivery is even attempted to the removed session
	req.Empty(h.events)
	req.Len(stay.events, 1)
}

func TestRouter_Empty_Selector_Delivers_Nothing(t *testing.T) {
	req := require.New(t)
	router, registry, stats := newTestRouter()
	h := &fakeSession{}
	registry.Register(uuid.NewString(), h)

	router.Deliver(context.Background(), event.Typing{}, contract.Selector{})

	req.Empty(h.events)
	req.Zero(stats.Snapshot(0).DeliveredEvents)
}
