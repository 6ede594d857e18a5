// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package regen regenerates a page's content tree from a content generator.
// A Pipeline runs one attempt end to end: confirmation gate, generator call,
// normalization and validation of the returned document, atomic apply, and
// exactly one audit log row. The same pipeline backs the HTTP endpoint and
// the queue worker.
package regen

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"pagecraft/internal/ai"
)

// OfflineModel is the id of the deterministic generator that needs no
// network access.
const OfflineModel = "offline"

// Params steer what a generator writes. All fields are optional.
type Params struct {
	Topic        string   `json:"topic,omitempty" validate:"max=500"`
	Audience     string   `json:"audience,omitempty" validate:"max=200"`
	Tone         string   `json:"tone,omitempty" validate:"max=100"`
	Language     string   `json:"language,omitempty" validate:"omitempty,bcp47_language_tag"`
	Keywords     []string `json:"keywords,omitempty" validate:"max=20,dive,max=100"`
	Instructions string   `json:"instructions,omitempty" validate:"max=2000"`
}

// Request is what a generator receives for one page.
type Request struct {
	PageID uuid.UUID
	Title  string
	Slug   string
	Type   string
	Params Params
}

// Output is the unstructured document a generator returned.
type Output struct {
	Raw        json.RawMessage
	TokensUsed int
	Model      string
}

// Generator produces a content document for a page.
type Generator interface {
	GenerateContent(ctx context.Context, req Request) (*Output, error)
}

// Generators resolves model ids to generators. An id is either a
// registered name ("offline") or "<provider>" / "<provider>:<model>" for
// an AI provider configured in the ai.Registry.
type Generators struct {
	mu        sync.RWMutex
	named     map[string]Generator
	providers *ai.Registry
}

// NewGenerators creates a resolver with the offline generator registered.
// providers may be nil when no AI provider is configured.
func NewGenerators(providers *ai.Registry) *Generators {
	return &Generators{
		named:     map[string]Generator{OfflineModel: Offline{}},
		providers: providers,
	}
}

// Register adds or replaces a named generator.
func (g *Generators) Register(id string, gen Generator) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.named[id] = gen
}

// Lookup returns the generator for a model id.
func (g *Generators) Lookup(id string) (Generator, error) {
	id = strings.TrimSpace(id)

	g.mu.RLock()
	gen, ok := g.named[id]
	g.mu.RUnlock()
	if ok {
		return gen, nil
	}

	name, model, _ := strings.Cut(id, ":")
	if g.providers == nil || !g.providers.HasProvider(name) {
		return nil, fmt.Errorf("unknown model %q", id)
	}
	p, err := g.providers.Get(name)
	if err != nil {
		return nil, err
	}
	return &LLM{Provider: p, Model: model}, nil
}

// Available lists the ids that Lookup accepts without a model suffix.
func (g *Generators) Available() []string {
	g.mu.RLock()
	ids := make([]string, 0, len(g.named))
	for id := range g.named {
		ids = append(ids, id)
	}
	g.mu.RUnlock()

	if g.providers != nil {
		ids = append(ids, g.providers.Available()...)
	}
	sort.Strings(ids)
	return ids
}
