// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package regen

import (
	"context"
	"fmt"
	"strings"

	"pagecraft/internal/ai"
)

// systemPrompt describes the document every provider must return.
const systemPrompt = `You are an SEO copywriter for a headless CMS. You write landing page content as JSON.
Reply with a single JSON object and nothing else. Use exactly this shape:
{
  "title": "page title",
  "meta_title": "at most 60 characters",
  "meta_description": "at most 155 characters",
  "sections": [
    {"section_key": "hero", "content_blocks": [{"type": "heading", "content": {"level": 1, "text": "..."}}]}
  ],
  "faqs": [{"question": "...", "answer": "..."}],
  "internal_links": [{"anchor": "...", "url": "/..."}]
}
Block types: heading, paragraph, list, quote, button, image. Image blocks must carry an "alt" text.
Do not wrap the JSON in markdown.`

// LLM generates documents through an AI provider. An empty Model uses the
// provider's configured default.
type LLM struct {
	Provider ai.Provider
	Model    string
}

// GenerateContent asks the provider for a document describing the page.
func (g *LLM) GenerateContent(ctx context.Context, req Request) (*Output, error) {
	completion, err := g.Provider.Generate(ctx, g.Model, systemPrompt, userPrompt(req))
	if err != nil {
		return nil, err
	}
	model := completion.Model
	if model == "" {
		model = g.Model
	}
	return &Output{
		Raw:        []byte(completion.Text),
		TokensUsed: completion.TokensUsed,
		Model:      g.Provider.Name() + ":" + model,
	}, nil
}

// userPrompt renders the request as instructions for the model.
func userPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write the content for the %s page %q (slug /%s).\n", pageType(req.Type), req.Title, req.Slug)
	if req.Params.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", req.Params.Topic)
	}
	if req.Params.Audience != "" {
		fmt.Fprintf(&b, "Audience: %s\n", req.Params.Audience)
	}
	if req.Params.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s\n", req.Params.Tone)
	}
	if req.Params.Language != "" {
		fmt.Fprintf(&b, "Language: %s\n", req.Params.Language)
	}
	if len(req.Params.Keywords) > 0 {
		fmt.Fprintf(&b, "Target keywords: %s\n", strings.Join(req.Params.Keywords, ", "))
	}
	if req.Params.Instructions != "" {
		fmt.Fprintf(&b, "Additional instructions: %s\n", req.Params.Instructions)
	}
	return b.String()
}

func pageType(t string) string {
	if t == "" {
		return "marketing"
	}
	return t
}

// PromptSummary is the human-readable line stored in the audit log.
func PromptSummary(req Request) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("regenerate %q", req.Title))
	if req.Params.Topic != "" {
		parts = append(parts, "topic="+req.Params.Topic)
	}
	if req.Params.Audience != "" {
		parts = append(parts, "audience="+req.Params.Audience)
	}
	if req.Params.Tone != "" {
		parts = append(parts, "tone="+req.Params.Tone)
	}
	if req.Params.Language != "" {
		parts = append(parts, "language="+req.Params.Language)
	}
	if len(req.Params.Keywords) > 0 {
		parts = append(parts, "keywords="+strings.Join(req.Params.Keywords, ","))
	}
	return strings.Join(parts, " ")
}
