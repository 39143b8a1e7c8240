// Package event defines the events the Broadcaster emits to room
// subscribers. Events carry copies of domain data; consuming one never
// grants access to mutable engine state.
package event

import "colosseum/domain"

// Event is the union of everything a subscriber can receive.
// Room returns the scoping room id; an empty id means the event is
// global and goes to every subscriber.
type Event interface {
	Room() string
}

// MessageEvent is emitted once per broadcast message.
type MessageEvent struct {
	RoomID  string
	Message domain.Message
}

func (e MessageEvent) Room() string { return e.RoomID }

// HistoryEvent carries the full history snapshot sent to a subscriber on
// subscribe.
type HistoryEvent struct {
	RoomID   string
	Messages []domain.Message
}

func (e HistoryEvent) Room() string { return e.RoomID }

// TypingStartEvent signals that an agent began a generation attempt.
type TypingStartEvent struct {
	RoomID      string
	AgentID     string
	DisplayName string
}

func (e TypingStartEvent) Room() string { return e.RoomID }

// TypingStopEvent signals that an agent settled, whatever the outcome.
type TypingStopEvent struct {
	RoomID      string
	AgentID     string
	DisplayName string
}

func (e TypingStopEvent) Room() string { return e.RoomID }

// RoomsUpdateEvent carries the current room listing. It is throttled and
// coalesced by the Broadcaster and delivered to every subscriber.
type RoomsUpdateEvent struct {
	Rooms []domain.RoomSummary
}

func (e RoomsUpdateEvent) Room() string { return "" }
