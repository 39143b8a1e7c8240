package llm

import (
	"context"
	"log/slog"
	"strings"

	"colosseum/domain"
)

// Provider kinds selectable through configuration.
const (
	ProviderMock      = "mock"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// FactoryConfig selects the backend kind and its model names. Kind is
// resolved once at startup; per-persona construction failures degrade to
// the mock backend instead of aborting pool construction.
type FactoryConfig struct {
	Provider       string
	OpenAIModel    string
	AnthropicModel string
	GeminiModel    string
	MaxReplyChars  int
}

type Factory struct {
	cfg FactoryConfig
	log *slog.Logger
}

func NewFactory(cfg FactoryConfig, log *slog.Logger) *Factory {
	return &Factory{cfg: cfg, log: log}
}

// ForPersona constructs the configured backend for one persona, falling
// back to the mock when construction fails (missing key, bad client).
func (f *Factory) ForPersona(ctx context.Context, persona domain.Persona) Capability {
	kind := strings.ToLower(f.cfg.Provider)
	if kind == "claude" {
		kind = ProviderAnthropic
	}

	var (
		capability Capability
		err        error
	)
	switch kind {
	case ProviderOpenAI:
		capability, err = NewOpenAI(persona.ID, f.cfg.OpenAIModel)
	case ProviderGemini:
		capability, err = NewGemini(ctx, persona.ID, f.cfg.GeminiModel)
	case ProviderAnthropic:
		capability, err = NewAnthropic(persona.ID, f.cfg.AnthropicModel)
	case ProviderMock, "":
		return NewMock(f.cfg.MaxReplyChars)
	default:
		f.log.Warn("unknown llm provider, using mock",
			slog.String("provider", f.cfg.Provider), slog.String("agent", persona.ID))
		return NewMock(f.cfg.MaxReplyChars)
	}
	if err != nil {
		f.log.Warn("llm backend unavailable, falling back to mock",
			slog.String("provider", kind), slog.String("agent", persona.ID), slog.Any("err", err))
		return NewMock(f.cfg.MaxReplyChars)
	}
	return capability
}
