// internal/workers/hr-assistant/invoke-tool/toolpath.go
package invoketool

import (
	"context"
	"time"

	"hr-assistant/internal/common/llm"
	"hr-assistant/internal/common/metrics"
	"hr-assistant/internal/models"
)

// Catalog renders the tool list for the prompt.
type Catalog interface {
	Describe() string
}

// Auditor records successful mutating tool calls.
type Auditor interface {
	PublishToolEvent(ctx context.Context, tool string, args map[string]interface{}, result string) (string, error)
}

type ToolRecorder interface {
	RecordToolCall(ctx context.Context, tool, status string)
}

type Defaults struct {
	LeaveBalance int
	TotalLeaves  int
}

// ToolPath asks the model for an action, dispatches it and has the model
// explain the result. Every failure becomes an answer.
type ToolPath struct {
	completer   llm.Completer
	catalog     Catalog
	executor    ToolExecutor
	defaults    Defaults
	callTimeout time.Duration
	auditor     Auditor
	recorder    ToolRecorder
	logger      Logger
}

func NewToolPath(completer llm.Completer, catalog Catalog, executor ToolExecutor, defaults Defaults, callTimeout time.Duration, log Logger) *ToolPath {
	return &ToolPath{
		completer:   completer,
		catalog:     catalog,
		executor:    executor,
		defaults:    defaults,
		callTimeout: callTimeout,
		logger:      log,
	}
}

// WithAuditor enables audit events for mutating tools.
func (p *ToolPath) WithAuditor(a Auditor) *ToolPath {
	p.auditor = a
	return p
}

func (p *ToolPath) WithRecorder(r ToolRecorder) *ToolPath {
	p.recorder = r
	return p
}

func (p *ToolPath) Run(ctx context.Context, query string, intent models.IntentLabel) *Output {
	raw, err := p.complete(ctx, BuildToolPrompt(query, p.catalog.Describe()))
	if err != nil {
		return &Output{Mode: models.ModeTool, Intent: intent, Answer: "Error calling language model: " + err.Error()}
	}

	action := Extract(raw)
	if action == nil {
		p.logger.Info("no tool action in model output", map[string]interface{}{
			"intent": string(intent),
		})
		return &Output{Mode: models.ModeDirect, Intent: intent, Answer: raw}
	}
	p.ApplyDefaults(action)

	out := &Output{Mode: models.ModeTool, Intent: intent, Tool: action.Tool, Args: action.Args}

	result, err := p.execute(ctx, action)
	if err != nil {
		p.record(ctx, action.Tool, "error")
		p.logger.Warn("tool execution failed", map[string]interface{}{
			"tool":  action.Tool,
			"error": err.Error(),
		})
		out.Answer = "Tool execution failed: " + err.Error()
		return out
	}
	p.record(ctx, action.Tool, "ok")
	p.audit(ctx, action, result)

	answer, err := p.complete(ctx, BuildResultPrompt(query, action.Tool, result))
	if err != nil {
		out.Answer = "Error calling language model: " + err.Error()
		return out
	}
	out.Answer = answer
	return out
}

// ApplyDefaults fills the leave counts of add_user when the model left them
// out or set them to null.
func (p *ToolPath) ApplyDefaults(action *models.ActionRequest) {
	if action.Tool != models.ToolAddUser {
		return
	}
	if action.Args == nil {
		action.Args = map[string]interface{}{}
	}
	if v, ok := action.Args["leave_balance"]; !ok || v == nil {
		action.Args["leave_balance"] = p.defaults.LeaveBalance
	}
	if v, ok := action.Args["total_leaves"]; !ok || v == nil {
		action.Args["total_leaves"] = p.defaults.TotalLeaves
	}
}

func (p *ToolPath) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.completer.Complete(ctx, prompt)
}

func (p *ToolPath) execute(ctx context.Context, action *models.ActionRequest) (string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.executor.Execute(ctx, action.Tool, action.Args)
}

func (p *ToolPath) record(ctx context.Context, tool, status string) {
	metrics.ToolCalls.WithLabelValues(tool, status).Inc()
	if p.recorder != nil {
		p.recorder.RecordToolCall(ctx, tool, status)
	}
}

func (p *ToolPath) audit(ctx context.Context, action *models.ActionRequest, result string) {
	if p.auditor == nil || !models.IsMutatingTool(action.Tool) {
		return
	}
	id, err := p.auditor.PublishToolEvent(ctx, action.Tool, action.Args, result)
	if err != nil {
		p.logger.Warn("failed to publish audit event", map[string]interface{}{
			"tool":  action.Tool,
			"error": err.Error(),
		})
		return
	}
	p.logger.Info("audit event published", map[string]interface{}{
		"tool":      action.Tool,
		"messageId": id,
	})
}

func (p *ToolPath) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.callTimeout)
}
