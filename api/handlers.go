package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stellarlinkco/promptd/internal/prompt"
	"github.com/stellarlinkco/promptd/internal/store"
)

type promptSummary struct {
	Name        string   `json:"name"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Variables   int      `json:"variables"`
}

type renderRequest struct {
	Variables map[string]any `json:"variables"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"prompts": s.cache.Len(),
	})
}

func (s *Server) handleListPrompts(c *gin.Context) {
	var defs []*prompt.Definition
	category := strings.TrimSpace(c.Query("category"))
	tag := strings.TrimSpace(c.Query("tag"))

	switch {
	case category != "":
		defs = s.cache.FilterByCategory(category)
	case tag != "":
		defs = s.cache.FilterByTag(tag)
	default:
		defs = s.cache.List()
	}

	out := make([]promptSummary, 0, len(defs))
	for _, def := range defs {
		out = append(out, summarize(def))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetPrompt(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		respondError(c, http.StatusBadRequest, errors.New("missing prompt name"))
		return
	}

	def, ok := s.cache.Get(name)
	if !ok {
		respondError(c, http.StatusNotFound, fmt.Errorf("prompt %q not found", name))
		return
	}
	c.JSON(http.StatusOK, def)
}

func (s *Server) handleSearch(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("q"))
	defs := s.cache.Search(keyword)

	out := make([]promptSummary, 0, len(defs))
	for _, def := range defs {
		out = append(out, summarize(def))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleRenderPrompt(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		respondError(c, http.StatusBadRequest, errors.New("missing prompt name"))
		return
	}

	def, ok := s.cache.Get(name)
	if !ok {
		respondError(c, http.StatusNotFound, fmt.Errorf("prompt %q not found", name))
		return
	}

	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	res := prompt.Render(def, req.Variables)
	s.recordRender(c, name, res, time.Since(start))

	if !res.OK() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"errors":   res.Errors,
			"warnings": res.Warnings,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"text":     res.Text,
		"warnings": res.Warnings,
	})
}

func (s *Server) handleReload(c *gin.Context) {
	start := time.Now()
	stats, err := s.cache.Reload()
	duration := time.Since(start)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	if s.store != nil {
		rec := &store.ReloadRecord{
			StartedAt:  start,
			DurationMs: duration.Milliseconds(),
			TotalFiles: stats.TotalFiles,
			Succeeded:  stats.Succeeded,
			Failed:     stats.Failed,
			ErrorCount: len(stats.Errors),
		}
		if err := s.store.RecordReload(c.Request.Context(), rec); err != nil {
			s.logger.Warn("record reload", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleStats(c *gin.Context) {
	out := gin.H{"load": s.cache.Stats()}

	if s.store != nil {
		counts, err := s.store.RenderCounts(c.Request.Context())
		if err != nil {
			respondError(c, http.StatusInternalServerError, err)
			return
		}
		out["render_counts"] = counts
	}

	c.JSON(http.StatusOK, out)
}

func (s *Server) handleListReloads(c *gin.Context) {
	if s.store == nil {
		respondError(c, http.StatusServiceUnavailable, errors.New("activity store not configured"))
		return
	}

	limit, err := parseLimitParam(c.Query("limit"), 50)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	recs, err := s.store.ListReloads(c.Request.Context(), limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) handleListRenders(c *gin.Context) {
	if s.store == nil {
		respondError(c, http.StatusServiceUnavailable, errors.New("activity store not configured"))
		return
	}

	limit, err := parseLimitParam(c.Query("limit"), 50)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	recs, err := s.store.ListRenders(c.Request.Context(), strings.TrimSpace(c.Query("prompt")), limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) recordRender(c *gin.Context, name string, res *prompt.RenderResult, duration time.Duration) {
	if s.store == nil || res == nil {
		return
	}
	rec := &store.RenderRecord{
		CreatedAt:  time.Now(),
		PromptName: name,
		OK:         res.OK(),
		DurationMs: duration.Milliseconds(),
		ErrorCount: len(res.Errors),
	}
	if err := s.store.RecordRender(c.Request.Context(), rec); err != nil {
		s.logger.Warn("record render", zap.Error(err))
	}
}

func summarize(def *prompt.Definition) promptSummary {
	return promptSummary{
		Name:        def.Name,
		Title:       def.Title,
		Description: def.Description,
		Category:    def.Category,
		Tags:        def.Tags,
		Variables:   len(def.Variables),
	}
}

func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		c.Status(status)
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseLimitParam(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	return n, nil
}
