// Package agents holds the autonomous personas: each Agent decides on its
// own, per broadcast and per room, whether to attempt a generated reply.
package agents

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"colosseum/domain"
	"colosseum/llm"
)

const (
	DefaultMinInterval   = 1500 * time.Millisecond
	DefaultCooldownMax   = 1000
	DefaultGenTimeout    = 15 * time.Second
	DefaultMaxReplyChars = 100
)

// Submitter is the slice of the Broadcaster an agent is allowed to touch:
// typing side effects and the single re-entry point for generated replies.
type Submitter interface {
	SubmitAgentMessage(ctx context.Context, roomID, agentID, displayName, content string) error
	EmitTypingStart(roomID, agentID, displayName string)
	EmitTypingStop(roomID, agentID, displayName string)
}

// Options tunes one agent. Zero values fall back to the defaults above.
type Options struct {
	MinInterval   time.Duration
	CooldownMax   int
	GenTimeout    time.Duration
	MaxReplyChars int
}

func (o Options) withDefaults() Options {
	if o.MinInterval <= 0 {
		o.MinInterval = DefaultMinInterval
	}
	if o.CooldownMax <= 0 {
		o.CooldownMax = DefaultCooldownMax
	}
	if o.GenTimeout <= 0 {
		o.GenTimeout = DefaultGenTimeout
	}
	if o.MaxReplyChars <= 0 {
		o.MaxReplyChars = DefaultMaxReplyChars
	}
	return o
}

// Agent owns its persona, its generation capability and its private
// throttling state. Shared room state is never mutated here; replies go
// through the Submitter only.
type Agent struct {
	persona    domain.Persona
	capability llm.Capability
	submitter  Submitter
	opts       Options
	log        *slog.Logger

	mu            sync.Mutex
	cooldowns     map[string]struct{}
	cooldownQueue []string // insertion order, oldest first
	lastReplyAt   map[string]time.Time

	now       func() time.Time
	randFloat func() float64
}

func NewAgent(persona domain.Persona, capability llm.Capability, submitter Submitter, opts Options, log *slog.Logger) *Agent {
	return &Agent{
		persona:     persona,
		capability:  capability,
		submitter:   submitter,
		opts:        opts.withDefaults(),
		log:         log.With(slog.String("agent", persona.ID)),
		cooldowns:   make(map[string]struct{}),
		lastReplyAt: make(map[string]time.Time),
		now:         time.Now,
		randFloat:   rand.Float64,
	}
}

func (a *Agent) ID() string          { return a.persona.ID }
func (a *Agent) DisplayName() string { return a.persona.DisplayName }

// OnBroadcast evaluates one broadcast event and produces at most one reply.
// The decision gates run synchronously; the generation call is the only
// blocking point. Failures are contained here and never returned.
func (a *Agent) OnBroadcast(ctx context.Context, roomID string, history []domain.Message, last domain.Message, responseProbability float64) {
	if !a.shouldAttempt(roomID, last, responseProbability) {
		return
	}

	a.submitter.EmitTypingStart(roomID, a.persona.ID, a.persona.DisplayName)
	defer func() {
		// Cleanup runs exactly once whatever the outcome: settle the
		// typing indicator and remember the trigger as handled.
		a.submitter.EmitTypingStop(roomID, a.persona.ID, a.persona.DisplayName)
		a.coolDown(last.ID)
	}()

	genCtx, cancel := context.WithTimeout(ctx, a.opts.GenTimeout)
	defer cancel()

	outcome, err := a.capability.Generate(genCtx, llm.Request{
		Persona:     a.persona,
		History:     history,
		LastMessage: last,
	})
	if err != nil {
		a.log.Error("generation failed", slog.String("room", roomID),
			slog.String("trigger", last.ID), slog.Any("err", err))
		return
	}
	if outcome.NoResponse || llm.IsNoResponse(outcome.Content) {
		return
	}

	content := domain.Truncate(outcome.Content, a.opts.MaxReplyChars)
	if err := a.submitter.SubmitAgentMessage(ctx, roomID, a.persona.ID, a.persona.DisplayName, content); err != nil {
		a.log.Error("reply submission failed", slog.String("room", roomID), slog.Any("err", err))
		return
	}

	a.mu.Lock()
	a.lastReplyAt[roomID] = a.now()
	a.mu.Unlock()
}

// shouldAttempt runs the four decision gates in order, short-circuiting on
// the first reject: self-echo, duplicate trigger, per-room rate limit,
// probability.
func (a *Agent) shouldAttempt(roomID string, last domain.Message, responseProbability float64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if last.FromAgent(a.persona.ID) {
		return false
	}
	if _, handled := a.cooldowns[last.ID]; handled {
		return false
	}
	if a.now().Sub(a.lastReplyAt[roomID]) < a.opts.MinInterval {
		return false
	}
	if responseProbability < 1.0 && a.randFloat() > responseProbability {
		return false
	}
	return true
}

// coolDown records a handled trigger id, evicting the oldest entries when
// the set exceeds its capacity.
func (a *Agent) coolDown(messageID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.cooldowns[messageID]; !ok {
		a.cooldowns[messageID] = struct{}{}
		a.cooldownQueue = append(a.cooldownQueue, messageID)
	}

	excess := len(a.cooldowns) - a.opts.CooldownMax
	for i := 0; i < excess; i++ {
		oldest := a.cooldownQueue[0]
		a.cooldownQueue = a.cooldownQueue[1:]
		delete(a.cooldowns, oldest)
	}
}

// cooldownSize is used by tests to observe eviction behavior.
func (a *Agent) cooldownSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.cooldowns)
}
