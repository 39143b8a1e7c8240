package runtime

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"colosseum/domain"
	"colosseum/domain/event"
)

func newTestSubscribers(t *testing.T) *SubscriberRegistry {
	t.Helper()
	log := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewSubscriberRegistry(log)
}

func TestSubscriberRegistry_ResolvesRoomAndGlobalSinks(t *testing.T) {
	subs := newTestSubscribers(t)
	subs.Subscribe("p1", "room-a", &recordingSink{})
	subs.Subscribe("p2", "room-b", &recordingSink{})

	require.Len(t, subs.SinksForRoom("room-a"), 1)
	require.Len(t, subs.SinksForRoom("room-b"), 1)
	require.Nil(t, subs.SinksForRoom("empty"))
	require.Len(t, subs.AllSinks(), 2)
}

func TestSubscriberRegistry_SessionSurvivesUntilLastRoomLeft(t *testing.T) {
	subs := newTestSubscribers(t)
	sink := &recordingSink{}
	subs.Subscribe("p1", "room-a", sink)
	subs.Subscribe("p1", "room-b", sink)

	subs.Unsubscribe("p1", "room-a")
	require.Nil(t, subs.SinksForRoom("room-a"))
	require.Len(t, subs.SinksForRoom("room-b"), 1, "membership in room-b must keep the session alive")
	require.Len(t, subs.AllSinks(), 1)

	subs.Unsubscribe("p1", "room-b")
	require.Nil(t, subs.SinksForRoom("room-b"))
	require.Empty(t, subs.AllSinks())
}

func TestSubscriberRegistry_ParticipantInTwoRoomsHasOneQueue(t *testing.T) {
	subs := newTestSubscribers(t)
	sink := &recordingSink{}
	first := subs.Subscribe("p1", "room-a", sink)
	second := subs.Subscribe("p1", "room-b", sink)

	require.Same(t, first, second)
}

func TestDispatcher_DeliversInEnqueueOrder(t *testing.T) {
	subs := newTestSubscribers(t)
	sink := &recordingSink{}
	queue := subs.Subscribe("p1", "lobby", sink)

	for i := 0; i < 20; i++ {
		queue.Consume(event.MessageEvent{RoomID: "lobby", Message: domain.Message{ID: fmt.Sprintf("m%d", i)}})
	}

	require.Eventually(t, func() bool { return len(sink.messages()) == 20 },
		time.Second, 5*time.Millisecond)
	for i, msg := range sink.messages() {
		require.Equal(t, fmt.Sprintf("m%d", i), msg.ID)
	}
}

func TestDispatcher_OverflowDropsInsteadOfBlocking(t *testing.T) {
	subs := newTestSubscribers(t)
	release := make(chan struct{})
	sink := &gatedSink{release: release}
	queue := subs.Subscribe("p1", "lobby", sink)

	// Flood well past the queue capacity while the sink is stuck. Every
	// enqueue must return immediately.
	start := time.Now()
	for i := 0; i < subscriberQueueSize*2; i++ {
		queue.Consume(event.MessageEvent{RoomID: "lobby", Message: domain.Message{ID: fmt.Sprintf("m%d", i)}})
	}
	require.Less(t, time.Since(start), time.Second)

	close(release)
	require.Eventually(t, func() bool {
		n := sink.count()
		return n > 0 && n <= subscriberQueueSize+1
	}, 2*time.Second, 10*time.Millisecond)
}

// gatedSink blocks its first Consume until released, holding the drain
// goroutine so the queue behind it fills up.
type gatedSink struct {
	recordingSink
	release <-chan struct{}
}

func (s *gatedSink) Consume(evt event.Event) {
	<-s.release
	s.recordingSink.Consume(evt)
}

func (s *gatedSink) count() int { return len(s.all()) }
