// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared/constant"
)

// mockProvider is a test double implementing the Provider interface.
// It records calls and returns configurable responses.
type mockProvider struct {
	name       string
	response   string
	err        error
	callCount  int
	lastModel  string
	lastSystem string
	lastUser   string
	mu         sync.Mutex
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Generate(ctx context.Context, model, systemPrompt, userPrompt string) (*Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.lastModel = model
	m.lastSystem = systemPrompt
	m.lastUser = userPrompt
	if m.err != nil {
		return nil, m.err
	}
	return &Completion{Text: m.response, Model: model}, nil
}

// ---------- Registry.Get ----------

func TestRegistryGet(t *testing.T) {
	mock := &mockProvider{name: "openai", response: "hello"}
	reg := &Registry{providers: map[string]Provider{"openai": mock}}

	p, err := reg.Get("openai")
	if err != nil {
		t.Fatalf("Get: unexpected error: %v", err)
	}
	if p != mock {
		t.Fatal("Get returned a different provider")
	}

	if _, err := reg.Get("claude"); err == nil {
		t.Fatal("Get(claude) should fail for an unconfigured provider")
	}
}

// ---------- Registry.Available / HasProvider ----------

func TestRegistryAvailableSorted(t *testing.T) {
	reg := &Registry{providers: map[string]Provider{
		"openai":  &mockProvider{name: "openai"},
		"claude":  &mockProvider{name: "claude"},
		"mistral": &mockProvider{name: "mistral"},
	}}

	got := reg.Available()
	want := []string{"claude", "mistral", "openai"}
	if len(got) != len(want) {
		t.Fatalf("Available: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Available[%d]: got %q, want %q", i, got[i], want[i])
		}
	}

	empty := &Registry{providers: map[string]Provider{}}
	if avail := empty.Available(); len(avail) != 0 {
		t.Errorf("empty registry Available: got %v", avail)
	}
}

func TestRegistryHasProvider(t *testing.T) {
	reg := &Registry{providers: map[string]Provider{"gemini": &mockProvider{name: "gemini"}}}

	tests := []struct {
		name string
		want bool
	}{
		{"gemini", true},
		{"openai", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := reg.HasProvider(tt.name); got != tt.want {
			t.Errorf("HasProvider(%q): got %v, want %v", tt.name, got, tt.want)
		}
	}
}

// ---------- Registry.Register ----------

func TestRegistryRegister(t *testing.T) {
	t.Run("adds a new provider", func(t *testing.T) {
		reg := NewRegistry(map[string]ProviderConfig{
			"openai": {APIKey: "key1", Model: "gpt-4o"},
		})

		if reg.HasProvider("custom") {
			t.Fatal("custom provider should not exist yet")
		}

		reg.Register("custom", &mockProvider{name: "custom", response: "custom reply"})

		p, err := reg.Get("custom")
		if err != nil {
			t.Fatalf("Get(custom): %v", err)
		}
		got, err := p.Generate(context.Background(), "m", "sys", "usr")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if got.Text != "custom reply" {
			t.Errorf("got %q, want %q", got.Text, "custom reply")
		}
	})

	t.Run("replaces an existing provider", func(t *testing.T) {
		reg := NewRegistry(map[string]ProviderConfig{
			"openai": {APIKey: "key1", Model: "gpt-4o"},
		})

		replacement := &mockProvider{name: "openai", response: "replaced"}
		reg.Register("openai", replacement)

		p, _ := reg.Get("openai")
		if p != replacement {
			t.Fatal("Register did not replace the provider")
		}
	})
}

// ---------- Concurrency ----------

func TestRegistryConcurrency(t *testing.T) {
	reg := &Registry{providers: map[string]Provider{
		"openai": &mockProvider{name: "openai", response: "x"},
		"gemini": &mockProvider{name: "gemini", response: "y"},
	}}

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines * 3)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			reg.Register("claude", &mockProvider{name: "claude"})
		}()
	}

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if len(reg.Available()) < 2 {
				t.Error("Available lost providers under concurrency")
			}
		}()
	}

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			p, err := reg.Get("openai")
			if err != nil {
				t.Errorf("Get error during concurrency: %v", err)
				return
			}
			if _, err := p.Generate(context.Background(), "", "sys", "usr"); err != nil {
				t.Errorf("Generate error during concurrency: %v", err)
			}
		}()
	}

	wg.Wait()
}

// ---------- NewRegistry ----------

func TestNewRegistryProviderNames(t *testing.T) {
	for _, name := range []string{"openai", "gemini", "claude", "mistral", "openrouter"} {
		t.Run(name, func(t *testing.T) {
			reg := NewRegistry(map[string]ProviderConfig{
				name: {APIKey: "test-key", Model: "test-model"},
			})

			p, err := reg.Get(name)
			if err != nil {
				t.Fatalf("Get: unexpected error: %v", err)
			}
			if p.Name() != name {
				t.Errorf("Name: got %q, want %q", p.Name(), name)
			}
		})
	}
}

func TestNewRegistrySkipsEmptyAPIKey(t *testing.T) {
	reg := NewRegistry(map[string]ProviderConfig{
		"openai":  {APIKey: "", Model: "gpt-4o"},
		"gemini":  {APIKey: "valid-key", Model: "gemini-pro"},
		"claude":  {APIKey: "", Model: "claude-sonnet"},
		"mistral": {APIKey: "", Model: "mistral-large"},
	})

	if reg.HasProvider("openai") {
		t.Error("openai should be skipped (no API key)")
	}
	if !reg.HasProvider("gemini") {
		t.Error("gemini should be available (has API key)")
	}

	if available := reg.Available(); len(available) != 1 {
		t.Errorf("len(Available): got %d, want 1", len(available))
	}
}

func TestNewRegistryIgnoresUnknownProvider(t *testing.T) {
	reg := NewRegistry(map[string]ProviderConfig{
		"unknown": {APIKey: "key", Model: "model"},
	})

	if reg.HasProvider("unknown") {
		t.Error("unknown provider should not be registered")
	}
	if available := reg.Available(); len(available) != 0 {
		t.Errorf("len(Available): got %d, want 0", len(available))
	}
}

// ---------- OpenRouter (SDK-backed) ----------

type fakeChatService struct {
	response   *openai.ChatCompletion
	err        error
	lastParams openai.ChatCompletionNewParams
}

func (f *fakeChatService) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.lastParams = body
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func chatCompletion(content, refusal, finish string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		ID:     "gen-1",
		Model:  "meta-llama/llama-3.3-70b",
		Object: constant.ValueOf[constant.ChatCompletion](),
		Choices: []openai.ChatCompletionChoice{{
			FinishReason: finish,
			Message: openai.ChatCompletionMessage{
				Content: content,
				Refusal: refusal,
				Role:    constant.ValueOf[constant.Assistant](),
			},
		}},
		Usage: openai.CompletionUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

func TestOpenRouterGenerate(t *testing.T) {
	chat := &fakeChatService{response: chatCompletion(`{"title":"t"}`, "", "stop")}
	p := &openRouterProvider{config: ProviderConfig{Model: "default-model"}, chat: chat}

	got, err := p.Generate(context.Background(), "", "sys", "usr")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got.Text != `{"title":"t"}` || got.TokensUsed != 15 {
		t.Errorf("completion: got %+v", got)
	}
	if got.Model != "meta-llama/llama-3.3-70b" {
		t.Errorf("Model: got %q", got.Model)
	}
	if chat.lastParams.Model != "default-model" {
		t.Errorf("request model: got %q, want default-model", chat.lastParams.Model)
	}
	if len(chat.lastParams.Messages) != 2 {
		t.Errorf("messages: got %d, want 2", len(chat.lastParams.Messages))
	}
}

func TestOpenRouterGenerate_Failures(t *testing.T) {
	tests := []struct {
		name string
		chat *fakeChatService
	}{
		{"transport error", &fakeChatService{err: errors.New("dial tcp: refused")}},
		{"no choices", &fakeChatService{response: &openai.ChatCompletion{}}},
		{"refusal", &fakeChatService{response: chatCompletion("", "cannot help", "stop")}},
		{"content filter", &fakeChatService{response: chatCompletion("partial", "", "content_filter")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &openRouterProvider{config: ProviderConfig{Model: "m"}, chat: tt.chat}
			if _, err := p.Generate(context.Background(), "", "s", "u"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
