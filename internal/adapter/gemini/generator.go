package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"helpcenter/backend/internal/errs"
	"helpcenter/backend/internal/retry"
)

// Generator produces completions through the Gemini chat API.
type Generator struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	policy      retry.Policy
}

func NewGenerator(client *genai.Client, model string, temperature float64, maxTokens int, policy retry.Policy) *Generator {
	return &Generator{
		client:      client,
		model:       model,
		temperature: float32(temperature),
		maxTokens:   int32(maxTokens),
		policy:      policy,
	}
}

// Generate runs a single-turn completion with a system instruction and a
// user prompt. The returned text is the concatenation of the first
// candidate's text parts.
func (g *Generator) Generate(ctx context.Context, system, user string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(g.temperature)
	model.SetMaxOutputTokens(g.maxTokens)
	if system != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}

	var resp *genai.GenerateContentResponse
	err := retry.Do(ctx, g.policy, func(ctx context.Context) error {
		var callErr error
		resp, callErr = model.GenerateContent(ctx, genai.Text(user))
		if callErr != nil {
			slog.WarnContext(ctx, "completion call failed, retrying", "error", callErr)
			return retry.Transient(callErr)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: completion failed: %v", errs.ErrGeneration, err)
	}

	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: completion failed: model returned no text", errs.ErrGeneration)
	}

	slog.DebugContext(ctx, "completion generated", "model", g.model, "answer_len", len(text))
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}
