package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stellarlinkco/promptd/internal/prompt"
	"github.com/stellarlinkco/promptd/internal/store"
)

const greetYAML = `name: greet
title: Greeting
description: Greets someone
category: demo
tags:
  - demo
variables:
  - name: who
    type: text
    required: true
template: "Hello {{who}}!"
`

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "greet.yaml"), []byte(greetYAML), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cache := prompt.NewCache(dir)
	if _, err := cache.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return New(cache, st, "test", nil)
}

func toolRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatalf("empty tool result: %#v", res)
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type: %T", res.Content[0])
	}
	return tc.Text
}

func TestHandleListPrompts(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleListPrompts(context.Background(), toolRequest("list_prompts", nil))
	if err != nil {
		t.Fatalf("handleListPrompts: %v", err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, `"greet"`) {
		t.Fatalf("expected greet in list: %s", text)
	}

	res, err = s.handleListPrompts(context.Background(), toolRequest("list_prompts", map[string]any{"category": "nope"}))
	if err != nil {
		t.Fatalf("handleListPrompts(filtered): %v", err)
	}
	if text := resultText(t, res); strings.Contains(text, "greet") {
		t.Fatalf("filter should exclude greet: %s", text)
	}
}

func TestHandleGetPrompt(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleGetPrompt(context.Background(), toolRequest("get_prompt", map[string]any{"name": "greet"}))
	if err != nil {
		t.Fatalf("handleGetPrompt: %v", err)
	}
	if text := resultText(t, res); !strings.Contains(text, "Hello {{who}}!") {
		t.Fatalf("expected template in result: %s", text)
	}

	res, err = s.handleGetPrompt(context.Background(), toolRequest("get_prompt", map[string]any{"name": "missing"}))
	if err != nil {
		t.Fatalf("handleGetPrompt(missing): %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected error result for missing prompt")
	}
}

func TestHandleSearchPrompts(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleSearchPrompts(context.Background(), toolRequest("search_prompts", map[string]any{"query": "greet"}))
	if err != nil {
		t.Fatalf("handleSearchPrompts: %v", err)
	}
	if text := resultText(t, res); !strings.Contains(text, "greet") {
		t.Fatalf("search result: %s", text)
	}

	res, err = s.handleSearchPrompts(context.Background(), toolRequest("search_prompts", nil))
	if err != nil {
		t.Fatalf("handleSearchPrompts(no query): %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected error result for missing query")
	}
}

func TestHandleRenderPrompt(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleRenderPrompt(context.Background(), toolRequest("render_prompt", map[string]any{
		"name":      "greet",
		"variables": map[string]any{"who": "Ada"},
	}))
	if err != nil {
		t.Fatalf("handleRenderPrompt: %v", err)
	}
	if text := resultText(t, res); text != "Hello Ada!" {
		t.Fatalf("render: got %q want %q", text, "Hello Ada!")
	}

	res, err = s.handleRenderPrompt(context.Background(), toolRequest("render_prompt", map[string]any{
		"name": "greet",
	}))
	if err != nil {
		t.Fatalf("handleRenderPrompt(missing var): %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected error result for missing required variable")
	}
	if text := resultText(t, res); !strings.Contains(text, "who") {
		t.Fatalf("error should name the variable: %s", text)
	}
}

func TestHandleReloadPrompts(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleReloadPrompts(context.Background(), toolRequest("reload_prompts", nil))
	if err != nil {
		t.Fatalf("handleReloadPrompts: %v", err)
	}
	if text := resultText(t, res); !strings.Contains(text, `"succeeded": 1`) {
		t.Fatalf("reload stats: %s", text)
	}
}

const typedYAML = `name: typed
title: Typed
description: Exercises typed arguments
variables:
  - name: count
    type: number
    required: true
  - name: verbose
    type: boolean
  - name: items
    type: array
template: '{{count}}|{{#if verbose}}on{{/if}}|{{join items ", "}}'
`

func promptRequest(name string, args map[string]string) mcp.GetPromptRequest {
	req := mcp.GetPromptRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func promptText(t *testing.T, res *mcp.GetPromptResult) string {
	t.Helper()
	if res == nil || len(res.Messages) == 0 {
		t.Fatalf("empty prompt result: %#v", res)
	}
	tc, ok := res.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("content type: %T", res.Messages[0].Content)
	}
	return tc.Text
}

func TestPromptHandler_TypedArguments(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "typed.yaml"), []byte(typedYAML), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cache := prompt.NewCache(dir)
	if _, err := cache.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	s := New(cache, nil, "test", nil)

	handler := s.promptHandler("typed")
	res, err := handler(context.Background(), promptRequest("typed", map[string]string{
		"count":   "3",
		"verbose": "true",
		"items":   `["a","b"]`,
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if got := promptText(t, res); got != "3|on|a, b" {
		t.Fatalf("render: got %q", got)
	}

	_, err = handler(context.Background(), promptRequest("typed", map[string]string{
		"count": "banana",
	}))
	if err == nil || !strings.Contains(err.Error(), `"count"`) {
		t.Fatalf("expected validation error naming count, got %v", err)
	}
}

func TestCoerceValue(t *testing.T) {
	cases := []struct {
		t    prompt.VariableType
		raw  string
		want any
	}{
		{prompt.TypeNumber, "3", float64(3)},
		{prompt.TypeNumber, " 2.5 ", 2.5},
		{prompt.TypeNumber, "banana", "banana"},
		{prompt.TypeBoolean, "true", true},
		{prompt.TypeBoolean, "0", false},
		{prompt.TypeBoolean, "maybe", "maybe"},
		{prompt.TypeText, "3", "3"},
		{prompt.TypeEnum, "Go", "Go"},
		{"", "free", "free"},
	}
	for _, c := range cases {
		got := coerceValue(c.t, c.raw)
		if got != c.want {
			t.Fatalf("coerceValue(%q, %q): got %#v want %#v", c.t, c.raw, got, c.want)
		}
	}

	items, ok := coerceValue(prompt.TypeArray, `["a","b"]`).([]any)
	if !ok || len(items) != 2 || items[0] != "a" {
		t.Fatalf("array: got %#v", items)
	}
	if got := coerceValue(prompt.TypeArray, "not json"); got != "not json" {
		t.Fatalf("bad array: got %#v", got)
	}
}

func TestReloadSyncsNativePrompts(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "greet.yaml"), []byte(greetYAML), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cache := prompt.NewCache(dir)
	if _, err := cache.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	s := New(cache, nil, "test", nil)

	if _, ok := s.registered["greet"]; !ok {
		t.Fatalf("greet not registered at construction: %v", s.registered)
	}

	// Edit the template and add a definition, then reload through the tool.
	edited := strings.Replace(greetYAML, "Hello {{who}}!", "Hi {{who}}!", 1)
	if err := os.WriteFile(filepath.Join(dir, "greet.yaml"), []byte(edited), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "typed.yaml"), []byte(typedYAML), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := s.handleReloadPrompts(context.Background(), toolRequest("reload_prompts", nil)); err != nil {
		t.Fatalf("handleReloadPrompts: %v", err)
	}

	if _, ok := s.registered["typed"]; !ok {
		t.Fatalf("new definition not registered after reload: %v", s.registered)
	}
	res, err := s.promptHandler("greet")(context.Background(), promptRequest("greet", map[string]string{"who": "Ada"}))
	if err != nil {
		t.Fatalf("handler after reload: %v", err)
	}
	if got := promptText(t, res); got != "Hi Ada!" {
		t.Fatalf("stale template served: got %q", got)
	}

	// Remove a definition and reload again.
	if err := os.Remove(filepath.Join(dir, "typed.yaml")); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.handleReloadPrompts(context.Background(), toolRequest("reload_prompts", nil)); err != nil {
		t.Fatalf("handleReloadPrompts: %v", err)
	}
	if _, ok := s.registered["typed"]; ok {
		t.Fatalf("removed definition still registered: %v", s.registered)
	}
	if _, err := s.promptHandler("typed")(context.Background(), promptRequest("typed", nil)); err == nil {
		t.Fatalf("expected not-found error for removed definition")
	}
}
