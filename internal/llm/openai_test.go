package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func chatCompletionResponse(text, finishReason string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o",
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]any{
					"role":    "assistant",
					"content": text,
				},
				"finish_reason": finishReason,
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     4,
			"completion_tokens": 9,
			"total_tokens":      13,
		},
	}
}

func TestOpenAIProvider_Complete(t *testing.T) {
	t.Parallel()

	reqCh := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var gotReq map[string]any
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		reqCh <- gotReq

		w.Header().Set("content-type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletionResponse("hello", "stop"))
	}))
	t.Cleanup(srv.Close)

	p := NewOpenAIProvider("k", srv.URL+"/", "")
	if p.Name() != "openai" {
		t.Fatalf("Name: got %q want %q", p.Name(), "openai")
	}
	if p.model != "gpt-4o" {
		t.Fatalf("default model: got %q want %q", p.model, "gpt-4o")
	}

	resp, err := p.Complete(context.Background(), &Request{
		Messages:  []Message{{Role: "weird", Content: "hi"}},
		System:    "sys",
		MaxTokens: 16,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got := Text(resp); got != "hello" {
		t.Fatalf("Text: got %q want %q", got, "hello")
	}
	if resp.Usage.InputTokens != 4 || resp.Usage.OutputTokens != 9 {
		t.Fatalf("Usage: %#v", resp.Usage)
	}
	if resp.StopReason != "stop" {
		t.Fatalf("StopReason: got %q", resp.StopReason)
	}

	gotReq := <-reqCh
	msgs, _ := gotReq["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages: got %d want %d", len(msgs), 2)
	}
	m0, _ := msgs[0].(map[string]any)
	if m0["role"] != "system" || m0["content"] != "sys" {
		t.Fatalf("system message: %#v", m0)
	}
	m1, _ := msgs[1].(map[string]any)
	if m1["role"] != "user" {
		t.Fatalf("unknown role should normalize to user, got %v", m1["role"])
	}
}

func TestOpenAIProvider_EmptyChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.Body.Close()
		w.Header().Set("content-type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-2",
			"object":  "chat.completion",
			"choices": []map[string]any{},
		})
	}))
	t.Cleanup(srv.Close)

	p := NewOpenAIProvider("k", srv.URL, "gpt-4o")
	_, err := p.Complete(context.Background(), &Request{
		Messages:  []Message{{Role: "user", Content: "hi"}},
		MaxTokens: 1,
	})
	if err == nil || !strings.Contains(err.Error(), "empty choices") {
		t.Fatalf("Complete: %v", err)
	}
}

func TestOpenAIProvider_NilArgs(t *testing.T) {
	t.Parallel()

	p := NewOpenAIProvider("k", "", "")
	if _, err := p.Complete(nil, &Request{}); err == nil { //nolint:staticcheck
		t.Fatalf("Complete(nil ctx): expected error")
	}
	if _, err := p.Complete(context.Background(), nil); err == nil {
		t.Fatalf("Complete(nil req): expected error")
	}
}

func TestNormalizeOpenAIRole(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"system":    openai.ChatMessageRoleSystem,
		" USER ":    openai.ChatMessageRoleUser,
		"assistant": openai.ChatMessageRoleAssistant,
		"tool":      openai.ChatMessageRoleTool,
		"developer": openai.ChatMessageRoleDeveloper,
		"":          openai.ChatMessageRoleUser,
		"whatever":  openai.ChatMessageRoleUser,
	}
	for in, want := range cases {
		if got := normalizeOpenAIRole(in); got != want {
			t.Fatalf("normalizeOpenAIRole(%q): got %q want %q", in, got, want)
		}
	}
}

func TestClampMaxTokens(t *testing.T) {
	t.Parallel()

	if got := clampMaxTokens(-5); got != 0 {
		t.Fatalf("clampMaxTokens(-5): %d", got)
	}
	if got := clampMaxTokens(0); got != 0 {
		t.Fatalf("clampMaxTokens(0): %d", got)
	}
	if got := clampMaxTokens(100); got != 100 {
		t.Fatalf("clampMaxTokens(100): %d", got)
	}
}
