// internal/api/server.go
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"hr-assistant/internal/common/config"
	"hr-assistant/internal/common/observability"
	"hr-assistant/internal/models"
)

const (
	DefaultAddress       = ":8000"
	DefaultAllowedOrigin = "http://localhost:3000"
	serviceName          = "hr-assistant-api"
)

// QueryHandler answers one assistant query. It never fails; problems are
// reported in the response mode.
type QueryHandler interface {
	Handle(ctx context.Context, query, callerID string) *models.QueryResponse
}

// Pinger is a dependency checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	config  config.APIConfig
	queries QueryHandler
	checks  map[string]Pinger
	obs     *observability.Observability
	logger  *zap.Logger
	engine  *gin.Engine
	http    *http.Server
}

func NewServer(cfg config.APIConfig, queries QueryHandler, checks map[string]Pinger, obs *observability.Observability, log *zap.Logger) *Server {
	if cfg.Address == "" {
		cfg.Address = DefaultAddress
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{DefaultAllowedOrigin}
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 180000
	}

	s := &Server{
		config:  cfg,
		queries: queries,
		checks:  checks,
		obs:     obs,
		logger:  log.With(zap.String("component", "api")),
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(ginzap.RecoveryWithZap(s.logger, true))
	r.Use(ginzap.Ginzap(s.logger, time.RFC3339, true))
	r.Use(otelgin.Middleware(serviceName))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", s.handleRoot)
	r.GET("/health", s.handleHealth)
	r.GET("/ready", s.handleReady)
	r.GET("/metrics", gin.WrapH(metricsHandler()))

	hr := r.Group("/hr")
	hr.GET("/", s.handleStatus)
	hr.POST("/query", s.handleQuery)

	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("HTTP API listening", zap.String("address", s.config.Address))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
