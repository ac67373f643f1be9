package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aescanero/dago-node-switch/internal/node"
	"github.com/aescanero/dago-node-switch/internal/router"
	"github.com/aescanero/dago-node-switch/internal/schema"
	"github.com/aescanero/dago-node-switch/internal/worker"
)

// Pinger checks the Redis connection
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// StatsSource reports worker counters
type StatsSource interface {
	Stats() worker.Stats
}

// Server serves health checks, node schemas and synchronous routing
type Server struct {
	port     int
	redis    Pinger
	stats    StatsSource
	executor *node.Executor
	logger   *zap.Logger
	engine   *gin.Engine
	server   *http.Server
}

// NewServer creates a new API server. stats may be nil.
func NewServer(port int, redisClient Pinger, stats StatsSource, executor *node.Executor, logger *zap.Logger) *Server {
	s := &Server{
		port:     port,
		redis:    redisClient,
		stats:    stats,
		executor: executor,
		logger:   logger,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", s.handleHealth)
	r.GET("/ready", s.handleReady)

	v1 := r.Group("/v1")
	{
		v1.GET("/schema/:node", s.handleSchema)
		v1.POST("/route", s.handleRoute)
	}

	s.engine = r
	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start starts the API server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("starting api server", zap.Int("port", s.port))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the API server
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("stopping api server")
	return s.server.Shutdown(ctx)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
	Stats  *worker.Stats     `json:"stats,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "healthy", Checks: map[string]string{}}
	if s.stats != nil {
		stats := s.stats.Stats()
		resp.Stats = &stats
	}

	if err := s.redis.Ping(ctx).Err(); err != nil {
		resp.Status = "unhealthy"
		resp.Checks["redis"] = fmt.Sprintf("unhealthy: %v", err)
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	resp.Checks["redis"] = "healthy"

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.redis.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "not ready"})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{Status: "ready"})
}

func (s *Server) handleSchema(c *gin.Context) {
	name := c.Param("node")
	if name == s.executor.Node().Name {
		c.JSON(http.StatusOK, s.executor.Node())
		return
	}

	props, ok := schema.Lookup(name)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown node %q", name)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "properties": props})
}

type routeRequest struct {
	Parameters map[string]interface{} `json:"parameters"`
	Items      []router.Item          `json:"items"`
}

func (s *Server) handleRoute(c *gin.Context) {
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Parameters == nil {
		req.Parameters = map[string]interface{}{}
	}
	if req.Items == nil {
		req.Items = []router.Item{}
	}

	result, err := s.executor.Execute(c.Request.Context(), req.Parameters, req.Items)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, schema.ErrValidation) {
			status = http.StatusBadRequest
		}
		s.logger.Debug("route request failed", zap.Int("status", status), zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
