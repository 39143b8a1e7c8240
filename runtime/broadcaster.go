package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"colosseum/contract"
	"colosseum/domain"
	"colosseum/domain/event"
)

const DefaultRoomsUpdateThrottle = 500 * time.Millisecond

// Reactor is the agent-side consumer of broadcasts. HandleBroadcast must
// settle every agent before returning.
type Reactor interface {
	HandleBroadcast(ctx context.Context, roomID string, history []domain.Message, last domain.Message) error
}

// Indexer receives every stamped message for ancillary projections such as
// the full-text search index. Indexing failures are logged, never fatal.
type Indexer interface {
	IndexMessage(roomID string, msg domain.Message) error
}

// Inbound is a raw message handed in by the transport layer, before
// stamping.
type Inbound struct {
	RoomID      string
	SenderType  domain.SenderType
	AgentID     string
	DisplayName string
	Content     string
}

// Broadcaster is the central coordinator: it stamps, persists and emits
// each inbound message, then triggers the agent pool and funnels the
// resulting replies back through the same path.
type Broadcaster struct {
	rooms *RoomRegistry
	subs  *SubscriberRegistry
	log   *slog.Logger

	reactor       Reactor
	indexer       Indexer
	maxReplyChars int
	throttle      time.Duration

	// stampMu serializes stamp -> persist -> enqueue so messages within a
	// room reach every subscriber queue in exactly their persistence order.
	// Delivery itself runs on the per-subscriber dispatcher goroutines and
	// never holds this lock.
	stampMu sync.Mutex

	notifyMu      sync.Mutex
	notifyPending bool

	now   func() time.Time
	newID func() string
}

func NewBroadcaster(rooms *RoomRegistry, subs *SubscriberRegistry, maxReplyChars int, throttle time.Duration, log *slog.Logger) *Broadcaster {
	if throttle <= 0 {
		throttle = DefaultRoomsUpdateThrottle
	}
	return &Broadcaster{
		rooms:         rooms,
		subs:          subs,
		log:           log,
		maxReplyChars: maxReplyChars,
		throttle:      throttle,
		now:           time.Now,
		newID:         uuid.NewString,
	}
}

// Attach late-binds the agent pool; the pool needs the broadcaster at
// construction time, so the cycle is closed here.
func (b *Broadcaster) Attach(reactor Reactor) {
	b.reactor = reactor
}

// AttachIndexer wires an optional message projection.
func (b *Broadcaster) AttachIndexer(indexer Indexer) {
	b.indexer = indexer
}

// OnIncomingMessage stamps the raw message, appends it to the room history,
// emits it to room subscribers, schedules a room-list update and fans the
// broadcast out to the agent pool. It returns once every agent has settled.
// Pool failures are logged and never propagate to the caller.
func (b *Broadcaster) OnIncomingMessage(ctx context.Context, in Inbound) domain.Message {
	roomID := domain.NormalizeRoomID(in.RoomID)

	b.stampMu.Lock()
	msg := domain.Message{
		ID:          b.newID(),
		SenderType:  in.SenderType,
		AgentID:     in.AgentID,
		DisplayName: in.DisplayName,
		Content:     in.Content,
		Ts:          b.now().UnixMilli(),
	}
	history := b.rooms.History(roomID)
	history.Add(msg)
	b.rooms.Touch(roomID)
	snapshot := history.Snapshot()
	b.emitToRoom(roomID, event.MessageEvent{RoomID: roomID, Message: msg})
	b.stampMu.Unlock()

	if b.indexer != nil {
		if err := b.indexer.IndexMessage(roomID, msg); err != nil {
			b.log.Warn("message indexing failed", slog.String("room", roomID), slog.Any("err", err))
		}
	}
	b.scheduleRoomsUpdate()

	if b.reactor != nil {
		if err := b.reactor.HandleBroadcast(ctx, roomID, snapshot, msg); err != nil {
			b.log.Error("agent pool broadcast failed", slog.String("room", roomID), slog.Any("err", err))
		}
	}
	return msg
}

// SubmitAgentMessage is the sole re-entry point for agent replies: it
// enforces the hard reply-length cap, tags the message as agent-origin and
// funnels it through OnIncomingMessage.
func (b *Broadcaster) SubmitAgentMessage(ctx context.Context, roomID, agentID, displayName, content string) error {
	b.OnIncomingMessage(ctx, Inbound{
		RoomID:      roomID,
		SenderType:  domain.SenderAI,
		AgentID:     agentID,
		DisplayName: displayName,
		Content:     domain.Truncate(content, b.maxReplyChars),
	})
	return nil
}

// EmitTypingStart forwards the typing indicator to room subscribers. It is
// a pure side effect, independent of the persisted history.
func (b *Broadcaster) EmitTypingStart(roomID, agentID, displayName string) {
	b.emitToRoom(roomID, event.TypingStartEvent{RoomID: roomID, AgentID: agentID, DisplayName: displayName})
}

func (b *Broadcaster) EmitTypingStop(roomID, agentID, displayName string) {
	b.emitToRoom(roomID, event.TypingStopEvent{RoomID: roomID, AgentID: agentID, DisplayName: displayName})
}

// Subscribe joins a participant to a room, registers their sink and
// replays the current history snapshot to them. The replay goes through
// the participant's delivery queue so it keeps its place ahead of any
// message that arrives after the subscription.
func (b *Broadcaster) Subscribe(roomID, participantID string, sink contract.EventSink) {
	roomID = domain.NormalizeRoomID(roomID)
	b.rooms.Join(roomID, participantID)
	queue := b.subs.Subscribe(participantID, roomID, sink)
	queue.Consume(event.HistoryEvent{RoomID: roomID, Messages: b.rooms.History(roomID).Snapshot()})
	b.scheduleRoomsUpdate()
}

// Unsubscribe removes the participant's sink and room membership.
func (b *Broadcaster) Unsubscribe(roomID, participantID string) {
	roomID = domain.NormalizeRoomID(roomID)
	b.rooms.Leave(roomID, participantID)
	b.subs.Unsubscribe(participantID, roomID)
	b.scheduleRoomsUpdate()
}

// emitToRoom enqueues the event on every room member's delivery queue.
// Enqueueing never blocks, so this is safe to call under stampMu.
func (b *Broadcaster) emitToRoom(roomID string, evt event.Event) {
	for _, sink := range b.subs.SinksForRoom(roomID) {
		sink.Consume(evt)
	}
}

// scheduleRoomsUpdate coalesces room-list notifications: while one timer is
// pending, further triggers within the throttle window are absorbed.
func (b *Broadcaster) scheduleRoomsUpdate() {
	b.notifyMu.Lock()
	if b.notifyPending {
		b.notifyMu.Unlock()
		return
	}
	b.notifyPending = true
	b.notifyMu.Unlock()

	time.AfterFunc(b.throttle, func() {
		b.notifyMu.Lock()
		b.notifyPending = false
		b.notifyMu.Unlock()

		evt := event.RoomsUpdateEvent{Rooms: b.rooms.List()}
		for _, sink := range b.subs.AllSinks() {
			sink.Consume(evt)
		}
	})
}
