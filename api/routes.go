package api

import (
	"errors"
	"os"
	"strings"
)

func (s *Server) registerRoutes() error {
	if s == nil || s.router == nil {
		return nil
	}

	api := s.router.Group("/api")
	apiKey := strings.TrimSpace(os.Getenv("PROMPTD_API_KEY"))
	if apiKey != "" {
		api.Use(apiKeyAuthMiddleware(apiKey))
	} else if strings.EqualFold(strings.TrimSpace(os.Getenv("PROMPTD_DISABLE_AUTH")), "true") {
		// Explicitly allow unauthenticated access.
	} else {
		return errors.New("api: missing auth configuration: set PROMPTD_API_KEY or set PROMPTD_DISABLE_AUTH=true")
	}

	api.GET("/health", s.handleHealth)
	api.GET("/prompts", s.handleListPrompts)
	api.GET("/prompts/:name", s.handleGetPrompt)
	api.POST("/prompts/:name/render", s.handleRenderPrompt)
	api.GET("/search", s.handleSearch)

	api.POST("/reload", s.handleReload)
	api.GET("/stats", s.handleStats)

	api.GET("/activity/reloads", s.handleListReloads)
	api.GET("/activity/renders", s.handleListRenders)

	return nil
}
