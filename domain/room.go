package domain

import "strings"

// DefaultRoomID is used when a caller references a room with a blank id.
const DefaultRoomID = "lobby"

// NormalizeRoomID maps blank room ids to the default room.
func NormalizeRoomID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultRoomID
	}
	return id
}

// RoomConfig is the per-room tuning surface.
// AgentEnabled holds explicit per-agent switches; an agent absent from the
// map counts as enabled.
type RoomConfig struct {
	AgentEnabled        map[string]bool
	ResponseProbability float64
}

// Clone returns a defensive copy so callers can never mutate stored config.
func (c RoomConfig) Clone() RoomConfig {
	enabled := make(map[string]bool, len(c.AgentEnabled))
	for id, on := range c.AgentEnabled {
		enabled[id] = on
	}
	return RoomConfig{AgentEnabled: enabled, ResponseProbability: c.ResponseProbability}
}

// ConfigPatch is a partial room config update. Nil ResponseProbability and
// absent AgentEnabled keys leave the prior values untouched.
type ConfigPatch struct {
	AgentEnabled        map[string]bool
	ResponseProbability *float64
}

// RoomSummary is the room-listing projection exposed to subscribers.
type RoomSummary struct {
	ID           string
	Participants int
	Messages     int
	LastActivity int64 // wall-clock milliseconds
}
