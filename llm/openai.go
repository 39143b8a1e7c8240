package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	apperrors "colosseum/errors"
)

const defaultOpenAIModel = "gpt-4o-mini"

type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI builds the OpenAI backend for one persona. Missing credentials
// are a construction error so the pool can degrade that agent to the mock.
func NewOpenAI(agentID, model string) (*OpenAI, error) {
	apiKey := pickKeyForAgent(agentID, "OPENAI")
	if apiKey == "" {
		return nil, fmt.Errorf("openai backend for agent %s: %w", agentID, apperrors.ErrMissingAPIKey)
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAI{client: openai.NewClient(apiKey), model: model}, nil
}

func (o *OpenAI) Generate(ctx context.Context, req Request) (Outcome, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0.7,
		MaxTokens:   300,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: BuildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: "너의 응답:"},
		},
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Outcome{NoResponse: true}, nil
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if IsNoResponse(text) {
		return Outcome{NoResponse: true}, nil
	}
	return Outcome{Content: text}, nil
}
