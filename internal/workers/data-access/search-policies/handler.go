// internal/workers/data-access/search-policies/handler.go
package searchpolicies

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "hr-assistant/internal/common/errors"
	"hr-assistant/internal/common/logger"
	"hr-assistant/internal/common/metrics"
)

const (
	TaskType = "hr-search-policies"
)

var (
	ErrEmptyQuery = errors.New("INVALID_QUERY")
)

type Handler struct {
	config     *Config
	index      *PolicyIndex
	errHandler *commonerrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, index *PolicyIndex, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		index:      index,
		errHandler: commonerrors.NewErrorHandler(l),
		logger:     l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(context.Background(), client, job, commonerrors.NewParseError(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, h.mapError(err))
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	result, err := h.index.search(ctx, query, input.K)
	if err != nil {
		return nil, err
	}

	h.logger.Info("policy search finished", map[string]interface{}{
		"hits":      len(result.Documents),
		"totalHits": result.TotalHits,
		"took":      result.Took,
	})

	return &Output{Documents: result.Documents, Count: len(result.Documents)}, nil
}

func (h *Handler) mapError(err error) *commonerrors.StandardError {
	index := h.index.Name()
	switch {
	case errors.Is(err, ErrEmptyQuery):
		return commonerrors.NewInvalidQueryError(err.Error())
	case errors.Is(err, ErrIndexNotFound):
		return commonerrors.NewIndexNotFoundError(index)
	case errors.Is(err, ErrSearchTimeout):
		return commonerrors.NewSearchTimeoutError(index)
	default:
		return commonerrors.NewSearchQueryFailedError(index, err)
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, stdErr *commonerrors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
