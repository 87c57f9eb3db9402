// Package mcpserver exposes the prompt catalog over the Model Context
// Protocol, as native MCP prompts and as tools for catalog management.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/stellarlinkco/promptd/internal/prompt"
	"github.com/stellarlinkco/promptd/internal/store"
)

const serverName = "promptd"

type Server struct {
	mcp    *server.MCPServer
	cache  *prompt.Cache
	store  store.Store
	logger *zap.Logger

	mu         sync.Mutex
	registered map[string]struct{}
}

// New builds an MCP server over the given cache. Cached definitions are
// registered as native MCP prompts; the registry is kept in step with the
// cache on every reload.
func New(cache *prompt.Cache, st store.Store, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		mcp: server.NewMCPServer(
			serverName,
			version,
			server.WithToolCapabilities(true),
			server.WithPromptCapabilities(true),
		),
		cache:      cache,
		store:      st,
		logger:     logger,
		registered: make(map[string]struct{}),
	}

	s.registerTools()
	s.syncPrompts()
	return s
}

// ServeStdio blocks serving MCP over stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// syncPrompts reconciles the native prompt registry with the current cache
// snapshot: definitions gone from the cache are deregistered, everything else
// is (re-)registered so argument metadata tracks the latest definition.
func (s *Server) syncPrompts() {
	defs := s.cache.List()

	s.mu.Lock()
	defer s.mu.Unlock()

	current := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		current[def.Name] = struct{}{}
	}

	var stale []string
	for name := range s.registered {
		if _, ok := current[name]; !ok {
			stale = append(stale, name)
		}
	}
	if len(stale) > 0 {
		s.mcp.DeletePrompts(stale...)
	}

	for _, def := range defs {
		s.mcp.AddPrompt(promptSpec(def), s.promptHandler(def.Name))
	}
	s.registered = current
}

func promptSpec(def *prompt.Definition) mcp.Prompt {
	opts := []mcp.PromptOption{mcp.WithPromptDescription(def.Description)}
	for _, v := range def.Variables {
		argOpts := []mcp.ArgumentOption{mcp.ArgumentDescription(v.Description)}
		if v.Required {
			argOpts = append(argOpts, mcp.RequiredArgument())
		}
		opts = append(opts, mcp.WithArgument(v.Name, argOpts...))
	}
	return mcp.NewPrompt(def.Name, opts...)
}

// promptHandler serves one named prompt. The definition is resolved from the
// cache per request, so a handler never renders a stale template.
func (s *Server) promptHandler(name string) func(context.Context, mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		def, ok := s.cache.Get(name)
		if !ok {
			return nil, fmt.Errorf("prompt %q not found", name)
		}

		res := prompt.Render(def, coerceArguments(def, req.Params.Arguments))
		s.recordRender(ctx, def.Name, res)
		if !res.OK() {
			return nil, fmt.Errorf("render %q: %s", def.Name, joinErrors(res.Errors))
		}

		return &mcp.GetPromptResult{
			Description: def.Description,
			Messages: []mcp.PromptMessage{
				{
					Role: mcp.RoleUser,
					Content: mcp.TextContent{
						Type: "text",
						Text: res.Text,
					},
				},
			},
		}, nil
	}
}

// coerceArguments converts the protocol's string-valued prompt arguments to
// the types the definition declares. A value that does not parse is passed
// through unchanged so variable validation reports it.
func coerceArguments(def *prompt.Definition, args map[string]string) map[string]any {
	types := make(map[string]prompt.VariableType, len(def.Variables))
	for _, v := range def.Variables {
		types[v.Name] = v.Type
	}

	vars := make(map[string]any, len(args))
	for k, raw := range args {
		vars[k] = coerceValue(types[k], raw)
	}
	return vars
}

func coerceValue(t prompt.VariableType, raw string) any {
	switch t {
	case prompt.TypeNumber:
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return f
		}
	case prompt.TypeBoolean:
		if b, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
			return b
		}
	case prompt.TypeArray:
		var items []any
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			return items
		}
	}
	return raw
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("list_prompts",
		mcp.WithDescription("List available prompts, optionally filtered by category or tag."),
		mcp.WithString("category", mcp.Description("Only list prompts in this category.")),
		mcp.WithString("tag", mcp.Description("Only list prompts carrying this tag.")),
	), s.handleListPrompts)

	s.mcp.AddTool(mcp.NewTool("get_prompt",
		mcp.WithDescription("Return the full definition of one prompt."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Prompt name.")),
	), s.handleGetPrompt)

	s.mcp.AddTool(mcp.NewTool("search_prompts",
		mcp.WithDescription("Search prompts by keyword across name, title, description and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search keyword.")),
	), s.handleSearchPrompts)

	s.mcp.AddTool(mcp.NewTool("render_prompt",
		mcp.WithDescription("Render a prompt template with the given variables."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Prompt name.")),
		mcp.WithObject("variables", mcp.Description("Variable values keyed by variable name.")),
	), s.handleRenderPrompt)

	s.mcp.AddTool(mcp.NewTool("reload_prompts",
		mcp.WithDescription("Rescan the prompt directory and rebuild the catalog."),
	), s.handleReloadPrompts)
}

func (s *Server) handleListPrompts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := strings.TrimSpace(req.GetString("category", ""))
	tag := strings.TrimSpace(req.GetString("tag", ""))

	var defs []*prompt.Definition
	switch {
	case category != "":
		defs = s.cache.FilterByCategory(category)
	case tag != "":
		defs = s.cache.FilterByTag(tag)
	default:
		defs = s.cache.List()
	}

	type entry struct {
		Name        string   `json:"name"`
		Title       string   `json:"title,omitempty"`
		Description string   `json:"description,omitempty"`
		Category    string   `json:"category,omitempty"`
		Tags        []string `json:"tags,omitempty"`
	}
	out := make([]entry, 0, len(defs))
	for _, def := range defs {
		out = append(out, entry{
			Name:        def.Name,
			Title:       def.Title,
			Description: def.Description,
			Category:    def.Category,
			Tags:        def.Tags,
		})
	}
	return jsonResult(out)
}

func (s *Server) handleGetPrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	def, ok := s.cache.Get(strings.TrimSpace(name))
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("prompt %q not found", name)), nil
	}
	return jsonResult(def)
}

func (s *Server) handleSearchPrompts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	defs := s.cache.Search(query)
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}
	return jsonResult(names)
}

func (s *Server) handleRenderPrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	def, ok := s.cache.Get(strings.TrimSpace(name))
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("prompt %q not found", name)), nil
	}

	vars, _ := req.GetArguments()["variables"].(map[string]any)
	res := prompt.Render(def, vars)
	s.recordRender(ctx, def.Name, res)
	if !res.OK() {
		return mcp.NewToolResultError(joinErrors(res.Errors)), nil
	}

	return mcp.NewToolResultText(res.Text), nil
}

func (s *Server) handleReloadPrompts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	stats, err := s.cache.Reload()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.syncPrompts()

	if s.store != nil {
		rec := &store.ReloadRecord{
			StartedAt:  start,
			DurationMs: time.Since(start).Milliseconds(),
			TotalFiles: stats.TotalFiles,
			Succeeded:  stats.Succeeded,
			Failed:     stats.Failed,
			ErrorCount: len(stats.Errors),
		}
		if err := s.store.RecordReload(ctx, rec); err != nil {
			s.logger.Warn("record reload", zap.Error(err))
		}
	}

	return jsonResult(stats)
}

func (s *Server) recordRender(ctx context.Context, name string, res *prompt.RenderResult) {
	if s.store == nil || res == nil {
		return
	}
	rec := &store.RenderRecord{
		CreatedAt:  time.Now(),
		PromptName: name,
		OK:         res.OK(),
		ErrorCount: len(res.Errors),
	}
	if err := s.store.RecordRender(ctx, rec); err != nil {
		s.logger.Warn("record render", zap.Error(err))
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func joinErrors(errs []string) string {
	return strings.Join(errs, "; ")
}
