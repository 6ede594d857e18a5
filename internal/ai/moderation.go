// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// ModerationResult is the outcome of a prompt safety check.
type ModerationResult struct {
	Safe       bool
	Categories []string // flagged categories, empty when Safe
}

// Moderator checks free-text prompt input before it reaches a provider.
type Moderator interface {
	CheckSafety(ctx context.Context, text string) (*ModerationResult, error)
}

// httpModerator calls an OpenAI-style POST /moderations endpoint. OpenAI
// and Mistral share the request shape; Mistral omits the top-level
// "flagged" field, so any true category counts as flagged.
type httpModerator struct {
	name   string
	url    string
	model  string
	apiKey string
	client *http.Client
}

func newOpenAIModerator(cfg ProviderConfig) *httpModerator {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	return &httpModerator{
		name:   "openai",
		url:    strings.TrimSuffix(base, "/") + "/moderations",
		model:  "omni-moderation-latest",
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func newMistralModerator(cfg ProviderConfig) *httpModerator {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.mistral.ai/v1"
	}
	return &httpModerator{
		name:   "mistral",
		url:    strings.TrimSuffix(base, "/") + "/moderations",
		model:  "mistral-moderation-latest",
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (m *httpModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	payload, err := json.Marshal(moderationRequest{Model: m.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("%s moderation marshal: %w", m.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s moderation request: %w", m.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s moderation http: %w", m.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s moderation read body: %w", m.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Provider: m.name + " moderation", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result moderationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%s moderation unmarshal: %w", m.name, err)
	}
	if len(result.Results) == 0 {
		return &ModerationResult{Safe: true}, nil
	}

	r := result.Results[0]
	var flagged []string
	for cat, on := range r.Categories {
		if on {
			flagged = append(flagged, categoryLabel(cat))
		}
	}
	sort.Strings(flagged)
	return &ModerationResult{
		Safe:       !r.Flagged && len(flagged) == 0,
		Categories: flagged,
	}, nil
}

// categoryLabel turns "hate/threatening" into "hate (threatening)" and
// "self_harm" into "self harm".
func categoryLabel(cat string) string {
	label := strings.ReplaceAll(cat, "_", " ")
	if base, sub, ok := strings.Cut(label, "/"); ok {
		label = base + " (" + sub + ")"
	}
	return label
}

// fallbackModerator tries primary and switches to secondary when primary
// rejects its credentials, e.g. a project-scoped OpenAI key without
// moderation access.
type fallbackModerator struct {
	primary   Moderator
	secondary Moderator
}

func (f *fallbackModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	res, err := f.primary.CheckSafety(ctx, text)
	var se *StatusError
	if errors.As(err, &se) && (se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden) {
		return f.secondary.CheckSafety(ctx, text)
	}
	return res, err
}

// newModerator prefers OpenAI's free endpoint and falls back to Mistral.
// It returns nil when neither key is configured.
func newModerator(configs map[string]ProviderConfig) Moderator {
	openai, mistral := configs["openai"], configs["mistral"]
	switch {
	case openai.APIKey != "" && mistral.APIKey != "":
		return &fallbackModerator{primary: newOpenAIModerator(openai), secondary: newMistralModerator(mistral)}
	case openai.APIKey != "":
		return newOpenAIModerator(openai)
	case mistral.APIKey != "":
		return newMistralModerator(mistral)
	}
	return nil
}

type moderationRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged    bool            `json:"flagged"`
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
}
