// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hr-assistant/internal/common/config"
	"hr-assistant/internal/common/database"
	"hr-assistant/internal/common/llm"
	"hr-assistant/internal/common/llm/llmtest"
	"hr-assistant/internal/common/logger"
	"hr-assistant/internal/models"
	"hr-assistant/internal/toolserver"
	"hr-assistant/pkg/registry"

	queryuserstore "hr-assistant/internal/workers/data-access/query-user-store"
	searchpolicies "hr-assistant/internal/workers/data-access/search-policies"
	classifyintent "hr-assistant/internal/workers/hr-assistant/classify-intent"
	handlequery "hr-assistant/internal/workers/hr-assistant/handle-query"
	invoketool "hr-assistant/internal/workers/hr-assistant/invoke-tool"
)

// The suite needs a reachable PostgreSQL (and optionally Elasticsearch) as
// configured in configs/config.yaml. Set HR_E2E=1 to run it.

var zapLog *zap.Logger

// Logger adapters to bridge logger.Logger to worker-specific Logger interfaces
type classifyIntentLoggerAdapter struct {
	logger.Logger
}

func (a *classifyIntentLoggerAdapter) With(fields map[string]interface{}) classifyintent.Logger {
	return &classifyIntentLoggerAdapter{a.Logger.With(fields)}
}

type invokeToolLoggerAdapter struct {
	logger.Logger
}

func (a *invokeToolLoggerAdapter) With(fields map[string]interface{}) invoketool.Logger {
	return &invokeToolLoggerAdapter{a.Logger.With(fields)}
}

type handleQueryLoggerAdapter struct {
	logger.Logger
}

func (a *handleQueryLoggerAdapter) With(fields map[string]interface{}) handlequery.Logger {
	return &handleQueryLoggerAdapter{a.Logger.With(fields)}
}

func TestMain(m *testing.M) {
	if os.Getenv("HR_E2E") == "" {
		fmt.Println("HR_E2E not set, skipping e2e suite")
		os.Exit(0)
	}
	zapLog, _ = zap.NewProduction()
	code := m.Run()
	_ = zapLog.Sync()
	os.Exit(code)
}

// ==========================
// Environment
// ==========================

type env struct {
	cfg   *config.Config
	store *queryuserstore.Store
	index *searchpolicies.PolicyIndex
	log   logger.Logger
}

func setup(t *testing.T) *env {
	cfg, err := config.Load()
	require.NoError(t, err)

	ctx := context.Background()
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	t.Cleanup(func() { pg.Close() })
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")

	// Per-run table so runs do not interfere.
	table := "hr_users_e2e_" + uuid.NewString()[:8]
	require.NoError(t, pg.EnsureUsersTable(ctx, table))
	t.Cleanup(func() { _, _ = pg.DB.Exec("DROP TABLE IF EXISTS " + table) })

	store, err := queryuserstore.NewStore(pg.DB, table)
	require.NoError(t, err)

	e := &env{cfg: cfg, store: store, log: logger.NewZapAdapter(zapLog)}

	if cfg.Database.Elasticsearch.Enabled() {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		require.NoError(t, err)
		require.NoError(t, es.Ping(ctx), "Elasticsearch ping failed")
		e.index = searchpolicies.NewPolicyIndex(es.Client, cfg.Database.Elasticsearch.PolicyIndex+"-e2e-"+uuid.NewString()[:8])
	}
	return e
}

// toolServer serves the catalog tools over streamable HTTP backed by the
// real user store.
func (e *env) toolServer(t *testing.T) string {
	srv, err := toolserver.New(e.store, registry.Default(), toolserver.Defaults{
		LeaveBalance: e.cfg.Assistant.DefaultLeaveBalance,
		TotalLeaves:  e.cfg.Assistant.DefaultTotalLeaves,
	}, "e2e", e.log)
	require.NoError(t, err)

	handler, err := srv.Handler(toolserver.TransportStreamable)
	require.NoError(t, err)
	httpSrv := httptest.NewServer(handler)
	t.Cleanup(httpSrv.Close)
	return httpSrv.URL
}

// ==========================
// Tests
// ==========================

func TestUserStore_Lifecycle(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	added, err := e.store.AddUser(ctx, "e2e-ann", 12, 24)
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)

	_, err = e.store.AddUser(ctx, "e2e-ann", 1, 1)
	assert.ErrorIs(t, err, queryuserstore.ErrDuplicateUser)

	byName, err := e.store.GetUser(ctx, "e2e-ann")
	require.NoError(t, err)
	assert.Equal(t, added.ID, byName.ID)

	handler := queryuserstore.NewHandler(&queryuserstore.Config{Timeout: 5 * time.Second}, e.store, e.log)
	out, err := handler.Execute(ctx, &queryuserstore.Input{UserID: added.ID})
	require.NoError(t, err)
	assert.True(t, out.Found)
	assert.Equal(t, 12, out.User.RemainingLeaves)

	updated, err := e.store.UpdateLeaveBalance(ctx, queryuserstore.UserRef{Username: "e2e-ann"}, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.RemainingLeaves)

	_, err = e.store.DeleteUser(ctx, queryuserstore.UserRef{ID: added.ID})
	require.NoError(t, err)

	out, err = handler.Execute(ctx, &queryuserstore.Input{UserID: added.ID})
	require.NoError(t, err)
	assert.False(t, out.Found)
}

func TestToolServer_OverHTTP(t *testing.T) {
	e := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	transport, err := invoketool.HTTPTransport(e.toolServer(t), invoketool.TransportStreamable, 10*time.Second)
	require.NoError(t, err)
	executor := invoketool.NewMCPExecutor(transport, "e2e", &invokeToolLoggerAdapter{e.log})

	result, err := executor.Execute(ctx, models.ToolAddUser, map[string]interface{}{"username": "e2e-john", "leave_balance": 15})
	require.NoError(t, err)
	assert.Contains(t, result, `"status":"created"`)

	user, err := e.store.FindUser(ctx, queryuserstore.UserRef{Username: "e2e-john"})
	require.NoError(t, err)
	assert.Equal(t, 15, user.RemainingLeaves)
	assert.Equal(t, e.cfg.Assistant.DefaultTotalLeaves, user.TotalLeaves)

	_, err = executor.Execute(ctx, models.ToolDeleteUser, map[string]interface{}{"username": "e2e-nobody"})
	assert.ErrorIs(t, err, invoketool.ErrToolExecution)
}

func TestPipeline_ToolPathAgainstLiveStore(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	model := llmtest.NewServer()
	defer model.Close()
	model.Reply("User request: Add new user Maria with 20 leaves", `{"action": "call_tool", "tool": "add_user", "args": {"username": "Maria", "leave_balance": 20}}`)
	model.Reply(`The tool "add_user" returned:`, "Maria was added with 20 leave days.")
	model.Reply("Add new user Maria", "add_user")

	client := llm.NewClient(
		config.LLMConfig{BaseURL: model.BaseURL(), Model: "test", Timeout: 5000},
		config.EmbeddingConfig{Model: "test-embed"},
	)

	ciLog := &classifyIntentLoggerAdapter{e.log}
	resolver := classifyintent.NewResolver(nil, classifyintent.NewGenerativeClassifier(client, ciLog), 5*time.Second, ciLog)

	transport, err := invoketool.HTTPTransport(e.toolServer(t), invoketool.TransportStreamable, 10*time.Second)
	require.NoError(t, err)
	itLog := &invokeToolLoggerAdapter{e.log}
	toolPath := invoketool.NewToolPath(client, registry.Default(),
		invoketool.NewMCPExecutor(transport, "e2e", itLog),
		invoketool.Defaults{LeaveBalance: 10, TotalLeaves: 100}, 5*time.Second, itLog)

	hqLog := &handleQueryLoggerAdapter{e.log}
	router := handlequery.NewRouter(handlequery.LoadConfig(), client, e.store, nil, toolPath, hqLog)
	pipeline := handlequery.NewPipeline(resolver, router, hqLog)

	resp := pipeline.Handle(ctx, "Add new user Maria with 20 leaves", "")
	assert.Equal(t, models.ModeTool, resp.Mode)
	assert.Equal(t, models.IntentAddUser, resp.Intent)
	assert.Equal(t, "Maria was added with 20 leave days.", resp.Answer)

	user, err := e.store.FindUser(ctx, queryuserstore.UserRef{Username: "Maria"})
	require.NoError(t, err)
	assert.Equal(t, 20, user.RemainingLeaves)
	assert.Equal(t, 100, user.TotalLeaves)
}

func TestPolicyIndex_IndexAndSearch(t *testing.T) {
	e := setup(t)
	if e.index == nil {
		t.Skip("elasticsearch policy index not configured")
	}
	ctx := context.Background()

	created, err := e.index.EnsureIndex(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	n, err := e.index.IndexDocuments(ctx, []models.PolicyDocument{
		{Content: "Employees may carry over up to five unused leave days.", Source: "leave.pdf", Page: 1, Chunk: 0},
		{Content: "Travel must be booked through the approved agency.", Source: "travel.pdf", Page: 2, Chunk: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	handler := searchpolicies.NewHandler(&searchpolicies.Config{Timeout: 10 * time.Second, Index: e.index.Name()}, e.index, e.log)
	out, err := handler.Execute(ctx, &searchpolicies.Input{Query: "carry over leave", K: 1})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "leave.pdf", out.Documents[0].Source)
}
