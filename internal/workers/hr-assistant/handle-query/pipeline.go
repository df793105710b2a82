// internal/workers/hr-assistant/handle-query/pipeline.go
package handlequery

import (
	"context"
	"strings"
	"time"

	"hr-assistant/internal/common/metrics"
	"hr-assistant/internal/models"
)

const answerEmptyQuery = "Empty query provided."

type IntentResolver interface {
	Resolve(ctx context.Context, query string) models.Resolution
}

type QueryRecorder interface {
	RecordQuery(ctx context.Context, mode, intent string, duration time.Duration)
}

// Pipeline resolves the intent of a query and routes it. It always answers.
type Pipeline struct {
	resolver IntentResolver
	router   *Router
	recorder QueryRecorder
	logger   Logger
}

func NewPipeline(resolver IntentResolver, router *Router, log Logger) *Pipeline {
	return &Pipeline{resolver: resolver, router: router, logger: log}
}

func (p *Pipeline) WithRecorder(r QueryRecorder) *Pipeline {
	p.recorder = r
	return p
}

func (p *Pipeline) Handle(ctx context.Context, query, callerID string) *models.QueryResponse {
	start := time.Now()

	query = strings.TrimSpace(query)
	if query == "" {
		resp := &models.QueryResponse{Mode: models.ModeError, Intent: models.IntentNone, Answer: answerEmptyQuery}
		p.record(ctx, resp, start)
		return resp
	}

	res := p.resolver.Resolve(ctx, query)
	p.logger.Info("intent detected", map[string]interface{}{
		"intent": string(res.Intent),
		"source": string(res.Source),
		"score":  res.Score,
	})

	resp := p.router.Route(ctx, query, res.Intent, strings.TrimSpace(callerID))
	p.record(ctx, &resp, start)
	return &resp
}

func (p *Pipeline) record(ctx context.Context, resp *models.QueryResponse, start time.Time) {
	metrics.QueriesRouted.WithLabelValues(string(resp.Mode), string(resp.Intent)).Inc()
	if p.recorder != nil {
		p.recorder.RecordQuery(ctx, string(resp.Mode), string(resp.Intent), time.Since(start))
	}
}
