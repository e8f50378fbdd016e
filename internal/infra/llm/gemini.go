package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"yt-sentiment/internal/config"
	"yt-sentiment/internal/resilience/retry"
)

// harmCategories are the adjustable Gemini safety categories.
var harmCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
	"HARM_CATEGORY_CIVIC_INTEGRITY",
}

// Gemini completes prompts with the Generative Language API.
type Gemini struct {
	caller
	service        *generativelanguage.Service
	safetySettings []*generativelanguage.SafetySetting
	maxTokens      int64
}

// NewGemini creates a Gemini completer. Extra options are appended after the
// API key, which lets tests point the client at a local server.
func NewGemini(ctx context.Context, cfg *config.ProviderConfig, opts ...option.ClientOption) (*Gemini, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(cfg.GeminiAPIKey)}, opts...)
	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini service: %w", err)
	}

	var safety []*generativelanguage.SafetySetting
	if cfg.DisableSafetyFilters {
		for _, category := range harmCategories {
			safety = append(safety, &generativelanguage.SafetySetting{
				Category:  category,
				Threshold: "BLOCK_NONE",
			})
		}
	}

	return &Gemini{
		caller:         newCaller(config.ProviderGemini, cfg.GeminiModel, cfg.LLMTimeout),
		service:        svc,
		safetySettings: safety,
		maxTokens:      int64(cfg.MaxTokens),
	}, nil
}

// Complete implements Completer.
func (g *Gemini) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	return g.call(ctx, prompt, func(ctx context.Context) (string, error) {
		return g.generate(ctx, prompt, temperature)
	})
}

func (g *Gemini) generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: prompt}},
		}},
		GenerationConfig: &generativelanguage.GenerationConfig{
			Temperature:     temperature,
			MaxOutputTokens: g.maxTokens,
			ForceSendFields: []string{"Temperature"},
		},
		SafetySettings: g.safetySettings,
	}

	resp, err := g.service.Models.GenerateContent(modelName(g.model), req).Context(ctx).Do()
	if err != nil {
		return "", convertGoogleError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyResponse(g.provider)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", errEmptyResponse(g.provider)
	}
	return sb.String(), nil
}

// modelName qualifies a bare model id with the "models/" resource prefix.
func modelName(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}

// convertGoogleError maps googleapi errors onto *retry.HTTPError.
func convertGoogleError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &retry.HTTPError{StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	return err
}
