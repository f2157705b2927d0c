// Package server exposes the orchestration core over HTTP. It owns the
// concerns the core deliberately does not: authentication, per-model
// generator caching, and concurrent request handling (one run per request,
// runs independent of each other).
package server

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"reagent/internal/config"
	"reagent/internal/llm"
	"reagent/internal/observability"
	"reagent/internal/orchestrator"
	"reagent/internal/prompt"
	"reagent/internal/toolregistry"
)

// Server wires the registry, the generator cache, and the HTTP surface.
type Server struct {
	cfg      *config.Config
	registry *toolregistry.Registry
	models   *llm.Cache
	keys     *KeyStore
	logger   *observability.Logger
	engine   *gin.Engine
}

func New(cfg *config.Config, registry *toolregistry.Registry, models *llm.Cache, logger *observability.Logger) *Server {
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	s := &Server{
		cfg:      cfg,
		registry: registry,
		models:   models,
		keys:     NewKeyStore(),
		logger:   logger,
	}

	initialKey := cfg.Server.APIKey
	if initialKey == "" {
		var info KeyInfo
		initialKey, info = s.keys.Generate("initial_key")
		logger.Info("no server API key configured, generated one",
			"key_id", info.ID, "key", initialKey)
	} else {
		info := s.keys.Add(initialKey, "initial_key")
		logger.Info("server API key configured",
			"key_id", info.ID, "key", observability.SanitizeAPIKey(initialKey))
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.requestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-API-Key"}
	engine.Use(cors.New(corsConfig))

	engine.GET("/health", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := engine.Group("/", s.requireAPIKey())
	authed.POST("/agent", s.handleAgent)
	authed.GET("/tools", s.handleTools)
	authed.GET("/models", s.handleModels)
	authed.POST("/generate-api-key", s.handleGenerateKey)
	authed.GET("/api-keys", s.handleListKeys)
	authed.DELETE("/api-keys/:key_id", s.handleDeleteKey)

	s.engine = engine
	return s
}

// Handler returns the HTTP handler for mounting or testing.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.logger.Debug("request", "method", c.Request.Method, "path", c.Request.URL.Path,
			"client", c.ClientIP())
		c.Next()
	}
}

func (s *Server) requireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if _, ok := s.keys.Lookup(key); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}
		c.Next()
	}
}

// AgentQuery is the request body for POST /agent.
type AgentQuery struct {
	Query               string                    `json:"query" binding:"required"`
	ModelName           string                    `json:"model_name"`
	Tools               []string                  `json:"tools"`
	ConversationHistory []prompt.ConversationTurn `json:"conversation_history"`
	Examples            []prompt.FewShotExample   `json:"examples"`
	MaxIterations       int                       `json:"max_iterations"`
}

func (s *Server) handleAgent(c *gin.Context) {
	var query AgentQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model := query.ModelName
	if model == "" {
		model = s.cfg.LLM.Model
	}
	gen, err := s.models.Get(model)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	maxIterations := query.MaxIterations
	if maxIterations <= 0 {
		maxIterations = s.cfg.Agent.MaxIterations
	}

	runCtx := observability.ContextWithRunID(c.Request.Context(), newRunID())
	orch := orchestrator.New(s.registry, gen, orchestrator.WithLogger(s.logger))
	result, err := orch.Run(runCtx, orchestrator.Request{
		Query:         query.Query,
		Tools:         query.Tools,
		History:       query.ConversationHistory,
		Examples:      query.Examples,
		MaxIterations: maxIterations,
	})
	if err != nil {
		var notFound *toolregistry.NotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": s.registry.List()})
}

// GenerateKeyRequest is the request body for POST /generate-api-key.
type GenerateKeyRequest struct {
	KeyName string `json:"key_name" binding:"required"`
}

func (s *Server) handleGenerateKey(c *gin.Context) {
	var req GenerateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	value, info := s.keys.Generate(req.KeyName)
	c.JSON(http.StatusOK, gin.H{
		"key_id":    info.ID,
		"key_value": value,
		"key_name":  info.Name,
	})
}

func (s *Server) handleListKeys(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"api_keys": s.keys.List()})
}

func (s *Server) handleDeleteKey(c *gin.Context) {
	if !s.keys.Delete(c.Param("key_id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "API key not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "API key deleted"})
}

func (s *Server) handleModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": s.models.Keys()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"model":  s.cfg.LLM.Model,
		"tools":  len(s.registry.Names()),
	})
}

func newRunID() string {
	return randomToken(8)
}
