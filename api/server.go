package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stellarlinkco/promptd/internal/config"
	"github.com/stellarlinkco/promptd/internal/prompt"
	"github.com/stellarlinkco/promptd/internal/store"
)

type Server struct {
	router *gin.Engine
	cache  *prompt.Cache
	store  store.Store
	config *config.Config
	logger *zap.Logger
}

func NewServer(cfg *config.Config, cache *prompt.Cache, st store.Store, logger *zap.Logger) (*Server, error) {
	if cache == nil {
		return nil, errors.New("api: nil cache")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	s := &Server{
		router: r,
		cache:  cache,
		store:  st,
		config: cfg,
		logger: logger,
	}
	s.registerMiddleware()
	if err := s.registerRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) Run(addr string) error {
	if s == nil || s.router == nil {
		return errors.New("api: nil server")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = ":8080"
	}
	return s.router.Run(addr)
}
