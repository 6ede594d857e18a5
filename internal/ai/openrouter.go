// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// chatCompletionClient is the slice of the SDK the OpenRouter provider uses.
type chatCompletionClient interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// openRouterProvider implements the Provider interface through the
// OpenAI SDK pointed at OpenRouter's compatible endpoint.
type openRouterProvider struct {
	config ProviderConfig
	chat   chatCompletionClient
}

// newOpenRouter creates an OpenRouter provider.
func newOpenRouter(cfg ProviderConfig) *openRouterProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = openRouterBaseURL
	}
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
	)
	return &openRouterProvider{config: cfg, chat: &client.Chat.Completions}
}

func (p *openRouterProvider) Name() string { return "openrouter" }

// Generate requests a chat completion. Refusals and content-filter stops are
// reported as errors.
func (p *openRouterProvider) Generate(ctx context.Context, model, systemPrompt, userPrompt string) (*Completion, error) {
	if model == "" {
		model = p.config.Model
	}

	completion, err := p.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &StatusError{Provider: "openrouter", StatusCode: apiErr.StatusCode, Body: apiErr.Error()}
		}
		return nil, fmt.Errorf("openrouter chat: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("openrouter: no choices returned")
	}

	choice := completion.Choices[0]
	if strings.EqualFold(strings.TrimSpace(choice.FinishReason), "content_filter") {
		return nil, fmt.Errorf("openrouter: blocked by content filter")
	}
	if refusal := strings.TrimSpace(choice.Message.Refusal); refusal != "" {
		return nil, fmt.Errorf("openrouter: refused: %s", refusal)
	}

	used := completion.Model
	if used == "" {
		used = model
	}
	return &Completion{
		Text:       choice.Message.Content,
		TokensUsed: int(completion.Usage.TotalTokens),
		Model:      used,
	}, nil
}
