package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	apperrors "colosseum/errors"
)

const defaultGeminiModel = "gemini-2.5-flash-lite"

type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, agentID, model string) (*Gemini, error) {
	apiKey := pickKeyForAgent(agentID, "GEMINI", "GOOGLE")
	if apiKey == "" {
		return nil, fmt.Errorf("gemini backend for agent %s: %w", agentID, apperrors.ErrMissingAPIKey)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, req Request) (Outcome, error) {
	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(req.Persona.SystemPrompt+"\n\n"+BuildUserPrompt(req)))
	if err != nil {
		return Outcome{}, fmt.Errorf("gemini generate: %w", err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	text := strings.TrimSpace(sb.String())
	if IsNoResponse(text) {
		return Outcome{NoResponse: true}, nil
	}
	return Outcome{Content: text}, nil
}
