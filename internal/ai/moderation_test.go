// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"testing"
)

func TestOpenAIModeratorFlagged(t *testing.T) {
	srv := newCapturingServer(t, []byte(`{"results":[{"flagged":true,"categories":{"hate/threatening":true,"self_harm":true,"violence":false}}]}`))
	defer srv.Close()

	m := newOpenAIModerator(ProviderConfig{APIKey: "sk-test", BaseURL: srv.URL})
	res, err := m.CheckSafety(context.Background(), "something nasty")
	if err != nil {
		t.Fatalf("CheckSafety: %v", err)
	}
	if res.Safe {
		t.Error("expected flagged prompt to be unsafe")
	}
	want := []string{"hate (threatening)", "self harm"}
	if !reflect.DeepEqual(res.Categories, want) {
		t.Errorf("categories = %v, want %v", res.Categories, want)
	}

	if srv.path != "/moderations" {
		t.Errorf("path = %q", srv.path)
	}
	if got := srv.headers.Get("Authorization"); got != "Bearer sk-test" {
		t.Errorf("Authorization = %q", got)
	}
	var req moderationRequest
	if err := json.Unmarshal(srv.body, &req); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if req.Model != "omni-moderation-latest" || req.Input != "something nasty" {
		t.Errorf("request = %+v", req)
	}
}

func TestMistralModeratorUsesCategories(t *testing.T) {
	tests := []struct {
		name string
		body string
		safe bool
	}{
		{"clean", `{"results":[{"categories":{"sexual":false,"pii":false}}]}`, true},
		{"category set", `{"results":[{"categories":{"sexual":false,"pii":true}}]}`, false},
		{"no results", `{"results":[]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, http.StatusOK, []byte(tt.body))
			defer srv.Close()

			m := newMistralModerator(ProviderConfig{APIKey: "k", BaseURL: srv.URL})
			res, err := m.CheckSafety(context.Background(), "text")
			if err != nil {
				t.Fatalf("CheckSafety: %v", err)
			}
			if res.Safe != tt.safe {
				t.Errorf("Safe = %v, want %v", res.Safe, tt.safe)
			}
		})
	}
}

func TestModeratorStatusError(t *testing.T) {
	srv := newTestServer(t, http.StatusTooManyRequests, []byte(`{"error":"slow down"}`))
	defer srv.Close()

	_, err := newOpenAIModerator(ProviderConfig{APIKey: "k", BaseURL: srv.URL}).CheckSafety(context.Background(), "x")
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected StatusError 429, got %v", err)
	}
}

type stubModerator struct {
	res   *ModerationResult
	err   error
	calls int
}

func (s *stubModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	s.calls++
	return s.res, s.err
}

func TestFallbackModerator(t *testing.T) {
	t.Run("auth failure switches", func(t *testing.T) {
		primary := &stubModerator{err: &StatusError{Provider: "openai moderation", StatusCode: http.StatusUnauthorized}}
		secondary := &stubModerator{res: &ModerationResult{Safe: true}}
		res, err := (&fallbackModerator{primary: primary, secondary: secondary}).CheckSafety(context.Background(), "x")
		if err != nil || !res.Safe {
			t.Fatalf("got %v, %v", res, err)
		}
		if secondary.calls != 1 {
			t.Errorf("secondary calls = %d", secondary.calls)
		}
	})

	t.Run("other errors do not switch", func(t *testing.T) {
		primary := &stubModerator{err: errors.New("connection refused")}
		secondary := &stubModerator{res: &ModerationResult{Safe: true}}
		_, err := (&fallbackModerator{primary: primary, secondary: secondary}).CheckSafety(context.Background(), "x")
		if err == nil {
			t.Fatal("expected error")
		}
		if secondary.calls != 0 {
			t.Errorf("secondary calls = %d", secondary.calls)
		}
	})
}

func TestNewModeratorSelection(t *testing.T) {
	if m := newModerator(nil); m != nil {
		t.Errorf("no keys: got %T", m)
	}
	if m, ok := newModerator(map[string]ProviderConfig{"mistral": {APIKey: "k"}}).(*httpModerator); !ok || m.name != "mistral" {
		t.Errorf("mistral only: got %#v", m)
	}
	if m, ok := newModerator(map[string]ProviderConfig{"openai": {APIKey: "k"}}).(*httpModerator); !ok || m.name != "openai" {
		t.Errorf("openai only: got %#v", m)
	}
	if _, ok := newModerator(map[string]ProviderConfig{"openai": {APIKey: "k"}, "mistral": {APIKey: "k"}}).(*fallbackModerator); !ok {
		t.Error("both keys: expected fallback moderator")
	}
}

func TestRegistryCheckPrompt(t *testing.T) {
	reg := NewRegistry(nil)
	res, err := reg.CheckPrompt(context.Background(), "anything")
	if err != nil || !res.Safe {
		t.Fatalf("without moderator: %v, %v", res, err)
	}

	stub := &stubModerator{res: &ModerationResult{Safe: false, Categories: []string{"violence"}}}
	reg.SetModerator(stub)

	res, err = reg.CheckPrompt(context.Background(), "   ")
	if err != nil || !res.Safe || stub.calls != 0 {
		t.Fatalf("blank text must skip the moderator: %v, %v, calls=%d", res, err, stub.calls)
	}
	res, err = reg.CheckPrompt(context.Background(), "attack")
	if err != nil || res.Safe || stub.calls != 1 {
		t.Fatalf("got %v, %v, calls=%d", res, err, stub.calls)
	}
}
