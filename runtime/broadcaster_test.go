package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"colosseum/domain"
	"colosseum/domain/event"
)

// recordingSink collects events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []event.Event
}

func (s *recordingSink) Consume(evt event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

func (s *recordingSink) all() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *recordingSink) messages() []domain.Message {
	var msgs []domain.Message
	for _, evt := range s.all() {
		if e, ok := evt.(event.MessageEvent); ok {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

func (s *recordingSink) roomsUpdates() int {
	n := 0
	for _, evt := range s.all() {
		if _, ok := evt.(event.RoomsUpdateEvent); ok {
			n++
		}
	}
	return n
}

// stallingSink simulates a slow subscriber.
type stallingSink struct {
	recordingSink
	delay time.Duration
}

func (s *stallingSink) Consume(evt event.Event) {
	time.Sleep(s.delay)
	s.recordingSink.Consume(evt)
}

// captureReactor records what the pool would have been handed.
type captureReactor struct {
	mu        sync.Mutex
	snapshots [][]domain.Message
	lasts     []domain.Message
	err       error
}

func (r *captureReactor) HandleBroadcast(_ context.Context, _ string, history []domain.Message, last domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, history)
	r.lasts = append(r.lasts, last)
	return r.err
}

func newTestBroadcaster(t *testing.T, throttle time.Duration) (*Broadcaster, *RoomRegistry) {
	t.Helper()
	rooms := newTestRegistry()
	log := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
	subs := NewSubscriberRegistry(log)
	return NewBroadcaster(rooms, subs, 100, throttle, log), rooms
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// awaitMessages waits for the sink's delivery queue to drain n message
// events and returns them.
func awaitMessages(t *testing.T, sink *recordingSink, n int) []domain.Message {
	t.Helper()
	require.Eventually(t, func() bool { return len(sink.messages()) == n },
		time.Second, 5*time.Millisecond)
	return sink.messages()
}

func TestBroadcaster_StampsPersistsAndEmits(t *testing.T) {
	broadcaster, rooms := newTestBroadcaster(t, time.Hour)
	sink := &recordingSink{}
	broadcaster.Subscribe("lobby", "p1", sink)

	sent := broadcaster.OnIncomingMessage(context.Background(), Inbound{
		RoomID: "lobby", SenderType: domain.SenderUser,
		DisplayName: "tester", Content: "hello",
	})

	require.NotEmpty(t, sent.ID)
	require.NotZero(t, sent.Ts)
	require.Equal(t, domain.SenderUser, sent.SenderType)

	snapshot := rooms.History("lobby").Snapshot()
	require.Len(t, snapshot, 1)
	require.Equal(t, sent, snapshot[0])

	msgs := awaitMessages(t, sink, 1)
	require.Equal(t, sent, msgs[0])
}

func TestBroadcaster_EmitOrderMatchesPersistOrder(t *testing.T) {
	broadcaster, rooms := newTestBroadcaster(t, time.Hour)
	sink := &recordingSink{}
	broadcaster.Subscribe("lobby", "p1", sink)

	for i := 0; i < 5; i++ {
		broadcaster.OnIncomingMessage(context.Background(), Inbound{
			RoomID: "lobby", SenderType: domain.SenderUser,
			DisplayName: "tester", Content: fmt.Sprintf("msg %d", i),
		})
	}

	persisted := rooms.History("lobby").Snapshot()
	emitted := awaitMessages(t, sink, 5)
	require.Equal(t, persisted, emitted)
}

func TestBroadcaster_RoomScoping(t *testing.T) {
	broadcaster, _ := newTestBroadcaster(t, time.Hour)
	sinkA, sinkB := &recordingSink{}, &recordingSink{}
	broadcaster.Subscribe("room-a", "pa", sinkA)
	broadcaster.Subscribe("room-b", "pb", sinkB)

	broadcaster.OnIncomingMessage(context.Background(), Inbound{
		RoomID: "room-a", SenderType: domain.SenderUser,
		DisplayName: "A", Content: "hello from A",
	})

	awaitMessages(t, sinkA, 1)
	time.Sleep(50 * time.Millisecond)
	require.Empty(t, sinkB.messages())
}

func TestBroadcaster_SlowSinkDoesNotBlockOtherRooms(t *testing.T) {
	broadcaster, _ := newTestBroadcaster(t, time.Hour)
	slow := &stallingSink{delay: 300 * time.Millisecond}
	fast := &recordingSink{}
	broadcaster.Subscribe("room-a", "slow", slow)
	broadcaster.Subscribe("room-b", "fast", fast)

	start := time.Now()
	broadcaster.OnIncomingMessage(context.Background(), Inbound{
		RoomID: "room-a", SenderType: domain.SenderUser,
		DisplayName: "A", Content: "stalls its own subscriber",
	})
	broadcaster.OnIncomingMessage(context.Background(), Inbound{
		RoomID: "room-b", SenderType: domain.SenderUser,
		DisplayName: "B", Content: "must go through immediately",
	})
	require.Less(t, time.Since(start), 150*time.Millisecond,
		"a stalled subscriber must not block the broadcast path")

	awaitMessages(t, fast, 1)
	// The slow subscriber still gets its event, just later.
	require.Eventually(t, func() bool { return len(slow.recordingSink.messages()) == 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestBroadcaster_SlowSinkStillReceivesInOrder(t *testing.T) {
	broadcaster, rooms := newTestBroadcaster(t, time.Hour)
	slow := &stallingSink{delay: 20 * time.Millisecond}
	broadcaster.Subscribe("lobby", "slow", slow)

	for i := 0; i < 5; i++ {
		broadcaster.OnIncomingMessage(context.Background(), Inbound{
			RoomID: "lobby", SenderType: domain.SenderUser,
			DisplayName: "tester", Content: fmt.Sprintf("msg %d", i),
		})
	}

	require.Eventually(t, func() bool { return len(slow.recordingSink.messages()) == 5 },
		2*time.Second, 10*time.Millisecond)
	require.Equal(t, rooms.History("lobby").Snapshot(), slow.recordingSink.messages())
}

func TestBroadcaster_MultiRoomParticipantKeepsDeliveryAfterLeavingOne(t *testing.T) {
	broadcaster, _ := newTestBroadcaster(t, time.Hour)
	sink := &recordingSink{}
	broadcaster.Subscribe("room-a", "p1", sink)
	broadcaster.Subscribe("room-b", "p1", sink)

	broadcaster.Unsubscribe("room-a", "p1")

	broadcaster.OnIncomingMessage(context.Background(), Inbound{
		RoomID: "room-b", SenderType: domain.SenderUser,
		DisplayName: "tester", Content: "still subscribed here",
	})

	msgs := awaitMessages(t, sink, 1)
	require.Equal(t, "still subscribed here", msgs[0].Content)
}

func TestBroadcaster_SubscribeReplaysHistory(t *testing.T) {
	broadcaster, rooms := newTestBroadcaster(t, time.Hour)
	rooms.History("lobby").Add(domain.Message{ID: "m1", Content: "before"})

	sink := &recordingSink{}
	broadcaster.Subscribe("lobby", "late", sink)

	require.Eventually(t, func() bool { return len(sink.all()) == 1 },
		time.Second, 5*time.Millisecond)
	history, ok := sink.all()[0].(event.HistoryEvent)
	require.True(t, ok)
	require.Len(t, history.Messages, 1)
	require.Equal(t, "m1", history.Messages[0].ID)
}

func TestBroadcaster_ReactorReceivesSnapshotIncludingTrigger(t *testing.T) {
	broadcaster, _ := newTestBroadcaster(t, time.Hour)
	reactor := &captureReactor{}
	broadcaster.Attach(reactor)

	sent := broadcaster.OnIncomingMessage(context.Background(), Inbound{
		RoomID: "lobby", SenderType: domain.SenderUser,
		DisplayName: "tester", Content: "hello",
	})

	require.Len(t, reactor.lasts, 1)
	require.Equal(t, sent, reactor.lasts[0])
	require.Equal(t, sent, reactor.snapshots[0][len(reactor.snapshots[0])-1])
}

func TestBroadcaster_ReactorFailureDoesNotBlockDelivery(t *testing.T) {
	broadcaster, rooms := newTestBroadcaster(t, time.Hour)
	broadcaster.Attach(&captureReactor{err: fmt.Errorf("pool exploded")})
	sink := &recordingSink{}
	broadcaster.Subscribe("lobby", "p1", sink)

	broadcaster.OnIncomingMessage(context.Background(), Inbound{
		RoomID: "lobby", SenderType: domain.SenderUser,
		DisplayName: "tester", Content: "hello",
	})

	awaitMessages(t, sink, 1)
	require.Equal(t, 1, rooms.History("lobby").Len())
}

func TestBroadcaster_SubmitAgentMessageTagsAndTruncates(t *testing.T) {
	broadcaster, rooms := newTestBroadcaster(t, time.Hour)

	long := strings.Repeat("답", 250)
	err := broadcaster.SubmitAgentMessage(context.Background(), "lobby", "alpha", "알파", long)
	require.NoError(t, err)

	snapshot := rooms.History("lobby").Snapshot()
	require.Len(t, snapshot, 1)
	msg := snapshot[0]
	require.Equal(t, domain.SenderAI, msg.SenderType)
	require.Equal(t, "alpha", msg.AgentID)
	require.Equal(t, 100, len([]rune(msg.Content)))
}

func TestBroadcaster_TypingEventsAreForwardedNotPersisted(t *testing.T) {
	broadcaster, rooms := newTestBroadcaster(t, time.Hour)
	sink := &recordingSink{}
	broadcaster.Subscribe("lobby", "p1", sink)

	broadcaster.EmitTypingStart("lobby", "muse", "뮤즈")
	broadcaster.EmitTypingStop("lobby", "muse", "뮤즈")

	// history replay + start + stop
	require.Eventually(t, func() bool { return len(sink.all()) == 3 },
		time.Second, 5*time.Millisecond)
	events := sink.all()
	_, isStart := events[1].(event.TypingStartEvent)
	_, isStop := events[2].(event.TypingStopEvent)
	require.True(t, isStart)
	require.True(t, isStop)
	require.Zero(t, rooms.History("lobby").Len())
}

func TestBroadcaster_RoomsUpdateIsCoalesced(t *testing.T) {
	broadcaster, _ := newTestBroadcaster(t, 50*time.Millisecond)
	sink := &recordingSink{}
	broadcaster.Subscribe("lobby", "p1", sink)

	// A burst of triggers inside one throttle window.
	for i := 0; i < 10; i++ {
		broadcaster.OnIncomingMessage(context.Background(), Inbound{
			RoomID: "lobby", SenderType: domain.SenderUser,
			DisplayName: "tester", Content: fmt.Sprintf("msg %d", i),
		})
	}

	require.Eventually(t, func() bool { return sink.roomsUpdates() == 1 },
		time.Second, 10*time.Millisecond)

	// No stray second notification after the window closes.
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 1, sink.roomsUpdates())
}