// Package runtime orchestrates the relay engine: room state, subscriber
// fan-out and the central Broadcaster. Domain rules live in domain/; this
// package owns their coordination.
package runtime

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"colosseum/domain"
)

type roomState struct {
	history      *domain.ConversationHistory
	participants map[string]struct{}
	lastActivity time.Time
	config       domain.RoomConfig
}

// RoomRegistry creates and looks up rooms on demand. Unknown room ids are
// valid: every lookup goes through ensure semantics, so no "room not found"
// state exists. Rooms are never destroyed.
//
// RoomRegistry is safe for concurrent use by multiple goroutines.
type RoomRegistry struct {
	mu            sync.RWMutex
	rooms         map[string]*roomState
	historyLimit  int
	defaultAgents []string
	now           func() time.Time
}

// NewRoomRegistry builds a registry whose default room config enables every
// agent in defaultAgents with responseProbability 1.0.
func NewRoomRegistry(historyLimit int, defaultAgents []string) *RoomRegistry {
	return &RoomRegistry{
		rooms:         make(map[string]*roomState),
		historyLimit:  historyLimit,
		defaultAgents: slices.Clone(defaultAgents),
		now:           time.Now,
	}
}

func (r *RoomRegistry) defaultConfig() domain.RoomConfig {
	enabled := make(map[string]bool, len(r.defaultAgents))
	for _, id := range r.defaultAgents {
		enabled[id] = true
	}
	return domain.RoomConfig{AgentEnabled: enabled, ResponseProbability: 1.0}
}

// ensure is the idempotent get-or-create every public method funnels
// through. Callers must hold no lock.
func (r *RoomRegistry) ensure(roomID string) *roomState {
	id := domain.NormalizeRoomID(roomID)

	r.mu.RLock()
	room, ok := r.rooms[id]
	r.mu.RUnlock()
	if ok {
		return room
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok = r.rooms[id]; ok {
		return room
	}
	room = &roomState{
		history:      domain.NewConversationHistory(r.historyLimit),
		participants: make(map[string]struct{}),
		lastActivity: r.now(),
		config:       r.defaultConfig(),
	}
	r.rooms[id] = room
	return room
}

// Ensure materializes the room if needed.
func (r *RoomRegistry) Ensure(roomID string) {
	r.ensure(roomID)
}

// History returns the room's bounded message log.
func (r *RoomRegistry) History(roomID string) *domain.ConversationHistory {
	return r.ensure(roomID).history
}

// Touch updates the room's last-activity timestamp to now.
func (r *RoomRegistry) Touch(roomID string) {
	room := r.ensure(roomID)
	r.mu.Lock()
	room.lastActivity = r.now()
	r.mu.Unlock()
}

// Join adds a participant to the room, idempotently.
func (r *RoomRegistry) Join(roomID, participantID string) {
	room := r.ensure(roomID)
	r.mu.Lock()
	room.participants[participantID] = struct{}{}
	r.mu.Unlock()
}

// Leave removes a participant from the room, idempotently.
func (r *RoomRegistry) Leave(roomID, participantID string) {
	room := r.ensure(roomID)
	r.mu.Lock()
	delete(room.participants, participantID)
	r.mu.Unlock()
}

// GetConfig returns a defensive copy of the room's config.
func (r *RoomRegistry) GetConfig(roomID string) domain.RoomConfig {
	room := r.ensure(roomID)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return room.config.Clone()
}

// UpdateConfig merges a partial patch into the room's config and returns
// the merged copy. AgentEnabled deep-merges key by key; absent keys keep
// their prior value. ResponseProbability updates outside [0,1] (or NaN)
// are ignored.
func (r *RoomRegistry) UpdateConfig(roomID string, patch domain.ConfigPatch) domain.RoomConfig {
	room := r.ensure(roomID)
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, on := range patch.AgentEnabled {
		room.config.AgentEnabled[id] = on
	}
	if p := patch.ResponseProbability; p != nil {
		if v := *p; !math.IsNaN(v) && v >= 0 && v <= 1 {
			room.config.ResponseProbability = v
		}
	}
	return room.config.Clone()
}

// List returns a summary of every room, most recently active first. The
// sort is stable so ties keep a deterministic order within a process run.
func (r *RoomRegistry) List() []domain.RoomSummary {
	r.mu.RLock()
	ids := lo.Keys(r.rooms)
	slices.Sort(ids)
	summaries := lo.Map(ids, func(id string, _ int) domain.RoomSummary {
		room := r.rooms[id]
		return domain.RoomSummary{
			ID:           id,
			Participants: len(room.participants),
			Messages:     room.history.Len(),
			LastActivity: room.lastActivity.UnixMilli(),
		}
	})
	r.mu.RUnlock()

	slices.SortStableFunc(summaries, func(a, b domain.RoomSummary) int {
		switch {
		case a.LastActivity > b.LastActivity:
			return -1
		case a.LastActivity < b.LastActivity:
			return 1
		default:
			return 0
		}
	})
	return summaries
}
