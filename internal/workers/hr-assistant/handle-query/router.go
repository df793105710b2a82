// internal/workers/hr-assistant/handle-query/router.go
package handlequery

import (
	"context"
	"errors"

	"hr-assistant/internal/common/llm"
	"hr-assistant/internal/models"
	queryuserstore "hr-assistant/internal/workers/data-access/query-user-store"
	invoketool "hr-assistant/internal/workers/hr-assistant/invoke-tool"
)

const (
	answerUserIDRequired = "User ID is required."
	answerUserNotFound   = "User not found"
	answerNoDocuments    = "No relevant HR documents found."
)

var ErrUserStoreUnavailable = errors.New("USER_STORE_UNAVAILABLE")

// UserStore returns queryuserstore.ErrUserNotFound for unknown ids.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.UserRecord, error)
}

type PolicyIndex interface {
	Search(ctx context.Context, query string, k int) ([]models.PolicyDocument, error)
}

type ToolRunner interface {
	Run(ctx context.Context, query string, intent models.IntentLabel) *invoketool.Output
}

// Router picks exactly one answer path for a resolved intent.
type Router struct {
	config    *Config
	completer llm.Completer
	users     UserStore
	policies  PolicyIndex
	tools     ToolRunner
	logger    Logger
}

// NewRouter accepts a nil policy index; policy questions then take the tool
// path like any other non-dedicated intent.
func NewRouter(config *Config, completer llm.Completer, users UserStore, policies PolicyIndex, tools ToolRunner, log Logger) *Router {
	return &Router{
		config:    config,
		completer: completer,
		users:     users,
		policies:  policies,
		tools:     tools,
		logger:    log,
	}
}

func (r *Router) Route(ctx context.Context, query string, intent models.IntentLabel, callerID string) models.QueryResponse {
	switch {
	case intent == models.IntentGeneral:
		return r.direct(ctx, query, intent)
	case intent == models.IntentLeaveBalance:
		return r.leaveBalance(ctx, query, intent, callerID)
	case intent == models.IntentPolicyQuery && r.policies != nil:
		return r.policy(ctx, query, intent)
	default:
		return *r.tools.Run(ctx, query, intent).Response()
	}
}

func (r *Router) direct(ctx context.Context, query string, intent models.IntentLabel) models.QueryResponse {
	return models.QueryResponse{Mode: models.ModeDirect, Intent: intent, Answer: r.complete(ctx, query)}
}

func (r *Router) leaveBalance(ctx context.Context, query string, intent models.IntentLabel, callerID string) models.QueryResponse {
	resp := models.QueryResponse{Mode: models.ModeDatabase, Intent: intent}
	if callerID == "" {
		resp.Answer = answerUserIDRequired
		return resp
	}

	user, err := r.getUser(ctx, callerID)
	switch {
	case errors.Is(err, queryuserstore.ErrUserNotFound):
		resp.Answer = answerUserNotFound
		return resp
	case err != nil:
		r.logger.Warn("user lookup failed", map[string]interface{}{"error": err.Error()})
		resp.Answer = "Database error: " + err.Error()
		return resp
	}

	resp.Answer = r.complete(ctx, BuildLeavePrompt(query, user))
	return resp
}

func (r *Router) policy(ctx context.Context, query string, intent models.IntentLabel) models.QueryResponse {
	resp := models.QueryResponse{Mode: models.ModeRetrieval, Intent: intent}

	docs, err := r.search(ctx, query)
	if err != nil {
		r.logger.Warn("policy search failed", map[string]interface{}{"error": err.Error()})
		resp.Answer = "Failed to search HR documents: " + err.Error()
		return resp
	}
	if len(docs) == 0 {
		resp.Answer = answerNoDocuments
		return resp
	}

	snippets := BuildPolicyContext(docs, r.config.MaxCharsPerDoc, r.config.MaxTotalChars)
	resp.Answer = r.complete(ctx, BuildPolicyPrompt(query, snippets))
	return resp
}

// complete turns a completion failure into an answer.
func (r *Router) complete(ctx context.Context, prompt string) string {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	answer, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		r.logger.Warn("completion failed", map[string]interface{}{"error": err.Error()})
		return "Error calling language model: " + err.Error()
	}
	return answer
}

func (r *Router) getUser(ctx context.Context, id string) (*models.UserRecord, error) {
	if r.users == nil {
		return nil, ErrUserStoreUnavailable
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.users.GetUser(ctx, id)
}

func (r *Router) search(ctx context.Context, query string) ([]models.PolicyDocument, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.policies.Search(ctx, query, r.config.RetrievalK)
}

func (r *Router) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.config.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.config.CallTimeout)
}
