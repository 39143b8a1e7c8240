package runtime

import (
	"log/slog"
	"sync"

	"colosseum/contract"
	"colosseum/domain/event"
)

// subscriberQueueSize bounds how far one sink may fall behind before its
// events are dropped.
const subscriberQueueSize = 256

type set map[string]struct{}

// dispatcher decouples delivery from the Broadcaster. Events are enqueued
// without blocking and a dedicated goroutine feeds the underlying sink in
// enqueue order; a stalled sink overflows its own queue and loses events
// instead of holding up the emit path.
type dispatcher struct {
	sink  contract.EventSink
	queue chan event.Event
	done  chan struct{}
	log   *slog.Logger
}

func newDispatcher(sink contract.EventSink, log *slog.Logger) *dispatcher {
	d := &dispatcher{
		sink:  sink,
		queue: make(chan event.Event, subscriberQueueSize),
		done:  make(chan struct{}),
		log:   log,
	}
	go d.run()
	return d
}

func (d *dispatcher) Consume(evt event.Event) {
	select {
	case d.queue <- evt:
	default:
		d.log.Warn("subscriber queue full, event dropped")
	}
}

func (d *dispatcher) run() {
	for {
		select {
		case evt := <-d.queue:
			d.sink.Consume(evt)
		case <-d.done:
			return
		}
	}
}

func (d *dispatcher) stop() { close(d.done) }

// SubscriberRegistry tracks each participant's active event sink and their
// room membership so the Broadcaster can resolve the delivery targets of a
// room-scoped or global event. Every registered sink is wrapped in a
// dispatcher, so the sinks handed out here never block their caller.
type SubscriberRegistry struct {
	mu          sync.RWMutex
	log         *slog.Logger
	sessions    map[string]*dispatcher // participant -> delivery queue
	roomMembers map[string]set         // room -> participants
}

func NewSubscriberRegistry(log *slog.Logger) *SubscriberRegistry {
	return &SubscriberRegistry{
		log:         log,
		sessions:    make(map[string]*dispatcher),
		roomMembers: make(map[string]set),
	}
}

// SinksForRoom resolves all active sinks of a room's participants. Keeping
// the connection in a single sessions map means a participant present in
// several rooms still has exactly one sink. Returns nil if the room has no
// members.
func (r *SubscriberRegistry) SinksForRoom(roomID string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return nil
	}
	var sinks []contract.EventSink
	for participantID := range members {
		if d, exists := r.sessions[participantID]; exists {
			sinks = append(sinks, d)
		}
	}
	return sinks
}

// AllSinks resolves every active sink, for global events such as the room
// listing update.
func (r *SubscriberRegistry) AllSinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]contract.EventSink, 0, len(r.sessions))
	for _, d := range r.sessions {
		sinks = append(sinks, d)
	}
	return sinks
}

// Subscribe registers a participant's connection and assigns them to a
// room, initializing the membership set on the fly. The returned sink is
// the participant's delivery queue; a participant joining a second room
// keeps their existing queue.
func (r *SubscriberRegistry) Subscribe(participantID, roomID string, sink contract.EventSink) contract.EventSink {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.sessions[participantID]
	if !ok {
		d = newDispatcher(sink, r.log)
		r.sessions[participantID] = d
	}
	if _, ok := r.roomMembers[roomID]; !ok {
		r.roomMembers[roomID] = make(set)
	}
	r.roomMembers[roomID][participantID] = struct{}{}
	return d
}

// Unsubscribe removes a participant from a room, dropping empty membership
// sets to avoid leaking room entries here. The session itself is torn down
// only once the participant has left their last room.
func (r *SubscriberRegistry) Unsubscribe(participantID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if members, ok := r.roomMembers[roomID]; ok {
		delete(members, participantID)
		if len(members) == 0 {
			delete(r.roomMembers, roomID)
		}
	}
	for _, members := range r.roomMembers {
		if _, stillMember := members[participantID]; stillMember {
			return
		}
	}
	if d, ok := r.sessions[participantID]; ok {
		d.stop()
		delete(r.sessions, participantID)
	}
}
