// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"hr-assistant/internal/common/config"
	commonerrors "hr-assistant/internal/common/errors"
	"hr-assistant/internal/common/validation"
	"hr-assistant/internal/models"
)

const maxQueryBody = 64 << 10

var queryRequestSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"query":   map[string]interface{}{"type": "string"},
		"user_id": map[string]interface{}{"type": []interface{}{"string", "null"}},
	},
	"required": []interface{}{"query"},
}

var routeList = []string{"/", "/health", "/ready", "/metrics", "/hr/", "/hr/query"}

func metricsHandler() http.Handler {
	return promhttp.Handler()
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "HR Assistant backend up and running!",
		"routes":  routeList,
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"module":           "HR Assistant",
		"intent_detection": true,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := s.checks[name].Ping(ctx); err != nil {
			s.logger.Warn("readiness check failed", zap.String("dependency", name), zap.Error(err))
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	c.JSON(status, gin.H{"status": state, "checks": results})
}

func (s *Server) handleQuery(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxQueryBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, commonerrors.NewValidationFailedError(err.Error()))
		return
	}

	result, err := validation.ValidateJSON(queryRequestSchema, raw)
	if err != nil {
		// not JSON at all
		c.JSON(http.StatusBadRequest, commonerrors.NewValidationFailedError(err.Error()))
		return
	}
	if !result.Valid {
		c.JSON(http.StatusBadRequest, commonerrors.NewValidationFailedError(result.Summary()))
		return
	}

	var req models.QueryRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.JSON(http.StatusBadRequest, commonerrors.NewValidationFailedError(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), config.GetDuration(s.config.RequestTimeout))
	defer cancel()

	ctx, span := s.startSpan(ctx, "hr.query", attribute.Bool("hr.has_user_id", req.UserID != ""))
	defer span.End()

	resp := s.queries.Handle(ctx, req.Query, req.UserID)
	span.SetAttributes(
		attribute.String("hr.mode", string(resp.Mode)),
		attribute.String("hr.intent", string(resp.Intent)),
	)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if s.obs == nil {
		return otel.Tracer(serviceName).Start(ctx, name, trace.WithAttributes(attrs...))
	}
	return s.obs.StartSpan(ctx, name, attrs...)
}
