// internal/workers/data-access/query-user-store/handler.go
package queryuserstore

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
	TaskType = "hr-query-user"
)

var (
	ErrUserIDRequired = errors.New("CALLER_ID_REQUIRED")
)

type Handler struct {
	config     *Config
	store      *Store
	errHandler *commonerrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, store *Store, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		store:      store,
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
		var stdErr *commonerrors.StandardError
		switch {
		case errors.Is(err, ErrUserIDRequired):
			stdErr = commonerrors.NewCallerIDRequiredError()
		case errors.Is(err, ErrQueryTimeout):
			stdErr = commonerrors.NewQueryTimeoutError("get_user")
		default:
			stdErr = commonerrors.NewQueryExecutionFailedError("get_user", err)
		}
		h.failJob(ctx, client, job, stdErr)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	user, err := h.store.GetUser(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return &Output{Found: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Output{User: user, Found: true}, nil
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
