// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ---------- Helpers ----------

// newTestServer creates an httptest.Server that responds with the given status
// code and body bytes. The caller must call Close on the returned server.
func newTestServer(t *testing.T, statusCode int, body []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		w.Write(body)
	}))
}

// capturingServer records the last request's headers, path and body.
type capturingServer struct {
	*httptest.Server
	headers http.Header
	path    string
	body    []byte
}

func newCapturingServer(t *testing.T, body []byte) *capturingServer {
	t.Helper()
	cs := &capturingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.headers = r.Header.Clone()
		cs.path = r.URL.Path
		cs.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}))
	return cs
}

// openAISuccessBody builds a JSON body matching the OpenAI chat completions
// response format with a single choice containing the given text.
func openAISuccessBody(text string) []byte {
	resp := openAIResponse{
		Model: "gpt-4o-2024-08-06",
		Choices: []openAIChoice{
			{Message: openAIMessage{Role: "assistant", Content: text}},
		},
		Usage: openAIUsage{PromptTokens: 30, CompletionTokens: 12, TotalTokens: 42},
	}
	b, _ := json.Marshal(resp)
	return b
}

// claudeSuccessBody builds a JSON body matching the Anthropic Messages
// response format with a single text content block.
func claudeSuccessBody(text string) []byte {
	resp := claudeResponse{
		Model: "claude-sonnet-4-6",
		Content: []claudeContentBlock{
			{Type: "text", Text: text},
		},
		Usage: claudeUsage{InputTokens: 20, OutputTokens: 7},
	}
	b, _ := json.Marshal(resp)
	return b
}

// geminiSuccessBody builds a JSON body matching the Gemini generateContent
// response format with a single candidate containing the given text.
func geminiSuccessBody(text string) []byte {
	resp := geminiResponse{
		Candidates: []geminiCandidate{
			{Content: geminiContent{Parts: []geminiPart{{Text: text}}}},
		},
		UsageMetadata: geminiUsage{TotalTokenCount: 99},
		ModelVersion:  "gemini-2.5-flash",
	}
	b, _ := json.Marshal(resp)
	return b
}

// providerCase describes one HTTP provider for the shared error-path tests.
type providerCase struct {
	name        string
	build       func(baseURL string) Provider
	successBody func(text string) []byte
	emptyBody   []byte
}

func httpProviders() []providerCase {
	return []providerCase{
		{
			name:        "openai",
			build:       func(u string) Provider { return newOpenAI(ProviderConfig{APIKey: "k", Model: "gpt-4o", BaseURL: u}) },
			successBody: openAISuccessBody,
			emptyBody:   []byte(`{"choices":[]}`),
		},
		{
			name:        "mistral",
			build:       func(u string) Provider { return newMistral(ProviderConfig{APIKey: "k", Model: "mistral-large", BaseURL: u}) },
			successBody: openAISuccessBody,
			emptyBody:   []byte(`{"choices":[]}`),
		},
		{
			name:        "claude",
			build:       func(u string) Provider { return newClaude(ProviderConfig{APIKey: "k", Model: "claude-sonnet-4-6", BaseURL: u}) },
			successBody: claudeSuccessBody,
			emptyBody:   []byte(`{"content":[{"type":"tool_use"}]}`),
		},
		{
			name:        "gemini",
			build:       func(u string) Provider { return newGemini(ProviderConfig{APIKey: "k", Model: "gemini-pro", BaseURL: u}) },
			successBody: geminiSuccessBody,
			emptyBody:   []byte(`{"candidates":[]}`),
		},
	}
}

// =====================================================================
// Success paths
// =====================================================================

func TestOpenAIGenerate_Success(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, openAISuccessBody(`{"title":"x"}`))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", Model: "gpt-4o", BaseURL: srv.URL})

	got, err := p.Generate(context.Background(), "", "You are helpful.", "Say hello")
	if err != nil {
		t.Fatalf("Generate: unexpected error: %v", err)
	}
	if got.Text != `{"title":"x"}` {
		t.Errorf("Text: got %q", got.Text)
	}
	if got.TokensUsed != 42 {
		t.Errorf("TokensUsed: got %d, want 42", got.TokensUsed)
	}
	if got.Model != "gpt-4o-2024-08-06" {
		t.Errorf("Model: got %q", got.Model)
	}
}

func TestOpenAIGenerate_VerifiesRequest(t *testing.T) {
	srv := newCapturingServer(t, openAISuccessBody("ok"))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "sk-test-12345", Model: "gpt-4o", BaseURL: srv.URL})

	if _, err := p.Generate(context.Background(), "gpt-4o-mini", "system prompt", "user prompt"); err != nil {
		t.Fatalf("Generate: unexpected error: %v", err)
	}

	if got := srv.headers.Get("Authorization"); got != "Bearer sk-test-12345" {
		t.Errorf("Authorization header: got %q", got)
	}
	if srv.path != "/chat/completions" {
		t.Errorf("path: got %q", srv.path)
	}

	var reqBody openAIRequest
	if err := json.Unmarshal(srv.body, &reqBody); err != nil {
		t.Fatalf("unmarshal request body: %v", err)
	}
	if reqBody.Model != "gpt-4o-mini" {
		t.Errorf("request model: got %q, want per-call override", reqBody.Model)
	}
	if reqBody.ResponseFormat == nil || reqBody.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format: got %+v, want json_object", reqBody.ResponseFormat)
	}
	if len(reqBody.Messages) != 2 {
		t.Fatalf("request messages count: got %d, want 2", len(reqBody.Messages))
	}
	if reqBody.Messages[0].Role != "system" || reqBody.Messages[0].Content != "system prompt" {
		t.Errorf("system message: got %+v", reqBody.Messages[0])
	}
	if reqBody.Messages[1].Role != "user" || reqBody.Messages[1].Content != "user prompt" {
		t.Errorf("user message: got %+v", reqBody.Messages[1])
	}
}

func TestClaudeGenerate_VerifiesRequest(t *testing.T) {
	srv := newCapturingServer(t, claudeSuccessBody("hi"))
	defer srv.Close()

	p := newClaude(ProviderConfig{APIKey: "sk-ant-test", Model: "claude-sonnet-4-6", BaseURL: srv.URL})

	got, err := p.Generate(context.Background(), "", "be brief", "hello")
	if err != nil {
		t.Fatalf("Generate: unexpected error: %v", err)
	}
	if got.Text != "hi" || got.TokensUsed != 27 {
		t.Errorf("completion: got %+v, want text hi and 27 tokens", got)
	}

	if srv.headers.Get("x-api-key") != "sk-ant-test" {
		t.Errorf("x-api-key: got %q", srv.headers.Get("x-api-key"))
	}
	if srv.headers.Get("anthropic-version") != "2023-06-01" {
		t.Errorf("anthropic-version: got %q", srv.headers.Get("anthropic-version"))
	}
	if srv.path != "/v1/messages" {
		t.Errorf("path: got %q", srv.path)
	}

	var reqBody claudeRequest
	if err := json.Unmarshal(srv.body, &reqBody); err != nil {
		t.Fatalf("unmarshal request body: %v", err)
	}
	if reqBody.System != "be brief" {
		t.Errorf("system: got %q", reqBody.System)
	}
	if reqBody.Model != "claude-sonnet-4-6" {
		t.Errorf("model: got %q", reqBody.Model)
	}
	if reqBody.MaxTokens <= 0 {
		t.Errorf("max_tokens must be positive, got %d", reqBody.MaxTokens)
	}
}

func TestGeminiGenerate_VerifiesRequest(t *testing.T) {
	srv := newCapturingServer(t, geminiSuccessBody(`{"ok":true}`))
	defer srv.Close()

	p := newGemini(ProviderConfig{APIKey: "g-key", Model: "gemini-pro", BaseURL: srv.URL})

	got, err := p.Generate(context.Background(), "", "sys", "usr")
	if err != nil {
		t.Fatalf("Generate: unexpected error: %v", err)
	}
	if got.TokensUsed != 99 || got.Model != "gemini-2.5-flash" {
		t.Errorf("completion: got %+v", got)
	}

	if srv.headers.Get("x-goog-api-key") != "g-key" {
		t.Errorf("x-goog-api-key: got %q", srv.headers.Get("x-goog-api-key"))
	}
	if srv.path != "/v1beta/models/gemini-pro:generateContent" {
		t.Errorf("path: got %q", srv.path)
	}

	var reqBody geminiRequest
	if err := json.Unmarshal(srv.body, &reqBody); err != nil {
		t.Fatalf("unmarshal request body: %v", err)
	}
	if reqBody.GenerationConfig == nil || reqBody.GenerationConfig.ResponseMimeType != "application/json" {
		t.Errorf("generationConfig: got %+v", reqBody.GenerationConfig)
	}
	if reqBody.SystemInstruction == nil || reqBody.SystemInstruction.Parts[0].Text != "sys" {
		t.Errorf("system_instruction: got %+v", reqBody.SystemInstruction)
	}
}

func TestMistralGenerate_UsesMistralName(t *testing.T) {
	srv := newTestServer(t, http.StatusInternalServerError, []byte(`{"error":"down"}`))
	defer srv.Close()

	p := newMistral(ProviderConfig{APIKey: "k", Model: "mistral-large", BaseURL: srv.URL})

	_, err := p.Generate(context.Background(), "", "s", "u")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if se.Provider != "mistral" {
		t.Errorf("Provider: got %q, want mistral", se.Provider)
	}
}

// =====================================================================
// Shared error paths
// =====================================================================

func TestProviders_HTTPErrorIsStatusError(t *testing.T) {
	for _, pc := range httpProviders() {
		t.Run(pc.name, func(t *testing.T) {
			srv := newTestServer(t, http.StatusTooManyRequests, []byte(`{"error":"rate limited"}`))
			defer srv.Close()

			_, err := pc.build(srv.URL).Generate(context.Background(), "", "s", "u")
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("expected *StatusError, got %v", err)
			}
			if se.StatusCode != http.StatusTooManyRequests {
				t.Errorf("StatusCode: got %d", se.StatusCode)
			}
			if !strings.Contains(err.Error(), "rate limited") {
				t.Errorf("error should include the response body, got %q", err.Error())
			}
		})
	}
}

func TestProviders_MalformedJSON(t *testing.T) {
	for _, pc := range httpProviders() {
		t.Run(pc.name, func(t *testing.T) {
			srv := newTestServer(t, http.StatusOK, []byte(`{not json`))
			defer srv.Close()

			_, err := pc.build(srv.URL).Generate(context.Background(), "", "s", "u")
			if err == nil || !strings.Contains(err.Error(), "unmarshal") {
				t.Fatalf("expected unmarshal error, got %v", err)
			}
		})
	}
}

func TestProviders_NoText(t *testing.T) {
	for _, pc := range httpProviders() {
		t.Run(pc.name, func(t *testing.T) {
			srv := newTestServer(t, http.StatusOK, pc.emptyBody)
			defer srv.Close()

			got, err := pc.build(srv.URL).Generate(context.Background(), "", "s", "u")
			if err == nil {
				t.Fatalf("expected error for empty response, got %+v", got)
			}
		})
	}
}

func TestProviders_CancelledContext(t *testing.T) {
	for _, pc := range httpProviders() {
		t.Run(pc.name, func(t *testing.T) {
			srv := newTestServer(t, http.StatusOK, pc.successBody("never read"))
			defer srv.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := pc.build(srv.URL).Generate(ctx, "", "s", "u")
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("expected context.Canceled, got %v", err)
			}
		})
	}
}

func TestProviders_ConnectionRefused(t *testing.T) {
	for _, pc := range httpProviders() {
		t.Run(pc.name, func(t *testing.T) {
			// Point at a server that was immediately closed.
			srv := newTestServer(t, http.StatusOK, pc.successBody("ok"))
			srv.Close()

			_, err := pc.build(srv.URL).Generate(context.Background(), "", "s", "u")
			if err == nil || !strings.Contains(err.Error(), "http") {
				t.Fatalf("expected http error, got %v", err)
			}
		})
	}
}

func TestProviders_DefaultBaseURL(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"openai", newOpenAI(ProviderConfig{APIKey: "k"}).config.BaseURL, "https://api.openai.com/v1"},
		{"mistral", newMistral(ProviderConfig{APIKey: "k"}).config.BaseURL, "https://api.mistral.ai/v1"},
		{"claude", newClaude(ProviderConfig{APIKey: "k"}).config.BaseURL, "https://api.anthropic.com"},
		{"gemini", newGemini(ProviderConfig{APIKey: "k"}).config.BaseURL, "https://generativelanguage.googleapis.com"},
		{"openrouter", newOpenRouter(ProviderConfig{APIKey: "k"}).config.BaseURL, openRouterBaseURL},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s BaseURL: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestProviderNames(t *testing.T) {
	names := map[string]Provider{
		"openai":     newOpenAI(ProviderConfig{}),
		"mistral":    newMistral(ProviderConfig{}),
		"claude":     newClaude(ProviderConfig{}),
		"gemini":     newGemini(ProviderConfig{}),
		"openrouter": newOpenRouter(ProviderConfig{APIKey: "k"}),
	}
	for want, p := range names {
		if p.Name() != want {
			t.Errorf("Name: got %q, want %q", p.Name(), want)
		}
	}
}

// =====================================================================
// Registry with real HTTP providers
// =====================================================================

func TestRegistryGet_WithRealHTTPProviders(t *testing.T) {
	openaiSrv := newTestServer(t, http.StatusOK, openAISuccessBody("openai response"))
	defer openaiSrv.Close()

	claudeSrv := newTestServer(t, http.StatusOK, claudeSuccessBody("claude response"))
	defer claudeSrv.Close()

	geminiSrv := newTestServer(t, http.StatusOK, geminiSuccessBody("gemini response"))
	defer geminiSrv.Close()

	mistralSrv := newTestServer(t, http.StatusOK, openAISuccessBody("mistral response"))
	defer mistralSrv.Close()

	reg := NewRegistry(map[string]ProviderConfig{
		"openai":  {APIKey: "ok1", Model: "gpt-4o", BaseURL: openaiSrv.URL},
		"claude":  {APIKey: "ok2", Model: "claude-sonnet-4-6", BaseURL: claudeSrv.URL},
		"gemini":  {APIKey: "ok3", Model: "gemini-pro", BaseURL: geminiSrv.URL},
		"mistral": {APIKey: "ok4", Model: "mistral-large", BaseURL: mistralSrv.URL},
	})

	for _, name := range []string{"openai", "claude", "gemini", "mistral"} {
		t.Run(name, func(t *testing.T) {
			p, err := reg.Get(name)
			if err != nil {
				t.Fatalf("Get(%q): %v", name, err)
			}
			got, err := p.Generate(context.Background(), "", "system", "user")
			if err != nil {
				t.Fatalf("Generate with %s: %v", name, err)
			}
			if got.Text != name+" response" {
				t.Errorf("Generate with %s: got %q", name, got.Text)
			}
		})
	}
}
