package agents

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/samber/lo"

	"colosseum/domain"
	"colosseum/llm"
)

// ConfigSource exposes the per-room config the pool consults before fanning
// out: the enabled-agent map and the response probability.
type ConfigSource interface {
	GetConfig(roomID string) domain.RoomConfig
}

// Pool holds the fixed agent roster and fans a broadcast out to every
// enabled agent concurrently. It waits for all of them to settle; one
// agent's failure never cancels or delays the others.
type Pool struct {
	agents  []*Agent
	configs ConfigSource
	log     *slog.Logger
}

// Factory builds the generation capability for one persona. Construction
// must not fail: backend factories degrade to a fallback capability instead
// (see llm.Factory.ForPersona).
type Factory interface {
	ForPersona(ctx context.Context, persona domain.Persona) llm.Capability
}

func NewPool(ctx context.Context, personas []domain.Persona, factory Factory, submitter Submitter, configs ConfigSource, opts Options, log *slog.Logger) *Pool {
	agents := lo.Map(personas, func(p domain.Persona, _ int) *Agent {
		return NewAgent(p, factory.ForPersona(ctx, p), submitter, opts, log)
	})
	return &Pool{agents: agents, configs: configs, log: log}
}

// HandleBroadcast filters the roster by the room's enabled-agent map and
// invokes every remaining agent concurrently, fire-and-collect.
func (p *Pool) HandleBroadcast(ctx context.Context, roomID string, history []domain.Message, last domain.Message) error {
	cfg := p.configs.GetConfig(roomID)

	enabled := lo.Filter(p.agents, func(a *Agent, _ int) bool {
		on, present := cfg.AgentEnabled[a.ID()]
		return !present || on
	})

	var wg sync.WaitGroup
	for _, agent := range enabled {
		wg.Add(1)
		go func(a *Agent) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					p.log.Error("panic in agent broadcast handler",
						slog.String("agent", a.ID()), slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())))
				}
			}()
			a.OnBroadcast(ctx, roomID, history, last, cfg.ResponseProbability)
		}(agent)
	}
	wg.Wait()
	return nil
}

// Agents returns the roster, mainly for wiring and status output.
func (p *Pool) Agents() []*Agent { return p.agents }
