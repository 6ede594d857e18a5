// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package regen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Offline is a deterministic generator for demos and tests. The same
// request always produces the same document.
type Offline struct{}

// GenerateContent builds a document from the page title and params.
func (Offline) GenerateContent(ctx context.Context, req Request) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	topic := strings.TrimSpace(req.Params.Topic)
	if topic == "" {
		topic = req.Title
	}
	audience := strings.TrimSpace(req.Params.Audience)
	if audience == "" {
		audience = "teams evaluating " + topic
	}

	doc := Document{
		Title:           topic,
		MetaTitle:       truncate(topic+" | Overview", 60),
		MetaDescription: truncate(fmt.Sprintf("Everything %s need to know about %s.", audience, topic), 155),
		Sections: []DocumentSection{
			{
				SectionKey: "hero",
				ContentBlocks: []DocumentBlock{
					{Type: "heading", Content: mustJSON(map[string]any{"level": 1, "text": topic})},
					{Type: "paragraph", Content: mustJSON(map[string]any{"text": fmt.Sprintf("A practical introduction to %s for %s.", topic, audience)})},
				},
			},
			{
				SectionKey: "benefits",
				ContentBlocks: []DocumentBlock{
					{Type: "list", Content: mustJSON(map[string]any{"items": benefits(topic, req.Params.Keywords)})},
				},
			},
			{
				SectionKey: "cta",
				ContentBlocks: []DocumentBlock{
					{Type: "button", Content: mustJSON(map[string]any{"label": "Talk to us", "url": "/contact"})},
				},
			},
		},
		Faqs: []FAQ{
			{Question: "What is " + topic + "?", Answer: topic + " is covered in detail on this page."},
			{Question: "Who is " + topic + " for?", Answer: "It is written for " + audience + "."},
		},
		InternalLinks: []json.RawMessage{
			mustJSON(map[string]string{"anchor": "Contact", "url": "/contact"}),
		},
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("offline marshal: %w", err)
	}
	return &Output{Raw: raw, Model: OfflineModel}, nil
}

func benefits(topic string, keywords []string) []string {
	if len(keywords) == 0 {
		return []string{
			"Understand " + topic + " quickly",
			"Compare options with confidence",
			"Start with a clear next step",
		}
	}
	items := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			items = append(items, fmt.Sprintf("%s for %s", kw, topic))
		}
	}
	return items
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
