package llm

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	apperrors "colosseum/errors"
)

const defaultAnthropicModel = "claude-3-5-sonnet-20240620"

type Anthropic struct {
	client anthropic.Client
	model  string
}

func NewAnthropic(agentID, model string) (*Anthropic, error) {
	apiKey := pickKeyForAgent(agentID, "ANTHROPIC")
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic backend for agent %s: %w", agentID, apperrors.ErrMissingAPIKey)
	}
	if model == "" {
		model = defaultAnthropicModel
	}
	return &Anthropic{client: anthropic.NewClient(option.WithAPIKey(apiKey)), model: model}, nil
}

func (a *Anthropic) Generate(ctx context.Context, req Request) (Outcome, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   300,
		Temperature: anthropic.Float(0.7),
		System: []anthropic.TextBlockParam{
			{Text: req.Persona.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildUserPrompt(req))),
		},
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("anthropic message: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if IsNoResponse(text) {
		return Outcome{NoResponse: true}, nil
	}
	return Outcome{Content: text}, nil
}
