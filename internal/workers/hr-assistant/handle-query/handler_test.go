// internal/workers/hr-assistant/handle-query/handler_test.go
package handlequery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-assistant/internal/common/config"
	"hr-assistant/internal/common/llm"
	"hr-assistant/internal/common/llm/llmtest"
	"hr-assistant/internal/models"
	queryuserstore "hr-assistant/internal/workers/data-access/query-user-store"
	classifyintent "hr-assistant/internal/workers/hr-assistant/classify-intent"
	invoketool "hr-assistant/internal/workers/hr-assistant/invoke-tool"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t *testing.T
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{t: t}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, fields)
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, fields)
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	return l
}

type classifyLogger struct{ *TestLogger }

func (l classifyLogger) With(map[string]interface{}) classifyintent.Logger {
	return l
}

// ==========================
// Fakes
// ==========================

type fakeCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (c *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	return c.reply, c.err
}

type fakeUserStore struct {
	user  *models.UserRecord
	err   error
	calls []string
}

func (s *fakeUserStore) GetUser(_ context.Context, id string) (*models.UserRecord, error) {
	s.calls = append(s.calls, id)
	return s.user, s.err
}

type fakePolicyIndex struct {
	docs  []models.PolicyDocument
	err   error
	gotK  int
	calls int
}

func (p *fakePolicyIndex) Search(_ context.Context, _ string, k int) ([]models.PolicyDocument, error) {
	p.calls++
	p.gotK = k
	return p.docs, p.err
}

type fakeToolRunner struct {
	calls []models.IntentLabel
}

func (r *fakeToolRunner) Run(_ context.Context, query string, intent models.IntentLabel) *invoketool.Output {
	r.calls = append(r.calls, intent)
	return &invoketool.Output{Mode: models.ModeTool, Intent: intent, Answer: "tool: " + query, Tool: models.ToolListUsers}
}

type fixedResolver struct {
	intent models.IntentLabel
	calls  int
}

func (r *fixedResolver) Resolve(context.Context, string) models.Resolution {
	r.calls++
	return models.Resolution{Intent: r.intent, Source: models.SourceGenerative}
}

type routerDeps struct {
	completer *fakeCompleter
	users     *fakeUserStore
	policies  *fakePolicyIndex
	tools     *fakeToolRunner
}

func newRouter(t *testing.T, withIndex bool) (*Router, *routerDeps) {
	d := &routerDeps{
		completer: &fakeCompleter{reply: "model answer"},
		users:     &fakeUserStore{},
		policies:  &fakePolicyIndex{},
		tools:     &fakeToolRunner{},
	}
	var index PolicyIndex
	if withIndex {
		index = d.policies
	}
	return NewRouter(LoadConfig(), d.completer, d.users, index, d.tools, NewTestLogger(t)), d
}

// ==========================
// Router
// ==========================

func TestRouter_General(t *testing.T) {
	r, d := newRouter(t, true)

	resp := r.Route(context.Background(), "tell me a joke", models.IntentGeneral, "")

	assert.Equal(t, models.QueryResponse{Mode: models.ModeDirect, Intent: models.IntentGeneral, Answer: "model answer"}, resp)
	assert.Equal(t, []string{"tell me a joke"}, d.completer.prompts)
}

func TestRouter_LeaveBalance(t *testing.T) {
	tests := []struct {
		name       string
		callerID   string
		user       *models.UserRecord
		storeErr   error
		wantAnswer string
		wantCalls  int
		wantPrompt bool
	}{
		{
			name:       "caller id required",
			wantAnswer: "User ID is required.",
		},
		{
			name:       "user not found",
			callerID:   "u-404",
			storeErr:   queryuserstore.ErrUserNotFound,
			wantAnswer: "User not found",
			wantCalls:  1,
		},
		{
			name:       "database error",
			callerID:   "u-1",
			storeErr:   fmt.Errorf("%w: connection refused", queryuserstore.ErrQueryExecutionFailed),
			wantAnswer: "Database error: QUERY_EXECUTION_FAILED: connection refused",
			wantCalls:  1,
		},
		{
			name:       "friendly summary",
			callerID:   "u-1",
			user:       &models.UserRecord{ID: "u-1", Name: "Ann", RemainingLeaves: 8, TotalLeaves: 20},
			wantAnswer: "model answer",
			wantCalls:  1,
			wantPrompt: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, d := newRouter(t, true)
			d.users.user = tt.user
			d.users.err = tt.storeErr

			resp := r.Route(context.Background(), "how many leaves left", models.IntentLeaveBalance, tt.callerID)

			assert.Equal(t, models.ModeDatabase, resp.Mode)
			assert.Equal(t, models.IntentLeaveBalance, resp.Intent)
			assert.Equal(t, tt.wantAnswer, resp.Answer)
			assert.Len(t, d.users.calls, tt.wantCalls)

			if !tt.wantPrompt {
				assert.Empty(t, d.completer.prompts)
				return
			}
			require.Len(t, d.completer.prompts, 1)
			p := d.completer.prompts[0]
			assert.Contains(t, p, `The user asked: "how many leaves left"`)
			assert.Contains(t, p, "- Name: Ann")
			assert.Contains(t, p, "- Remaining Leaves: 8")
			assert.Contains(t, p, "- Total Leaves: 20")
		})
	}
}

func TestRouter_LeaveBalance_NoStoreConfigured(t *testing.T) {
	r := NewRouter(LoadConfig(), &fakeCompleter{}, nil, nil, &fakeToolRunner{}, NewTestLogger(t))

	resp := r.Route(context.Background(), "leave balance", models.IntentLeaveBalance, "u-1")
	assert.Equal(t, "Database error: USER_STORE_UNAVAILABLE", resp.Answer)
}

func TestRouter_Policy_NoDocuments(t *testing.T) {
	r, d := newRouter(t, true)

	resp := r.Route(context.Background(), "what is the remote work policy", models.IntentPolicyQuery, "")

	assert.Equal(t, models.QueryResponse{Mode: models.ModeRetrieval, Intent: models.IntentPolicyQuery, Answer: "No relevant HR documents found."}, resp)
	assert.Empty(t, d.completer.prompts)
	assert.Equal(t, 4, d.policies.gotK)
}

func TestRouter_Policy_Answer(t *testing.T) {
	r, d := newRouter(t, true)
	d.policies.docs = []models.PolicyDocument{
		{Content: "Remote work is allowed\ntwo days a week.", Source: "remote.pdf"},
		{Content: "Managers approve exceptions."},
	}

	resp := r.Route(context.Background(), "remote work policy?", models.IntentPolicyQuery, "")

	assert.Equal(t, models.ModeRetrieval, resp.Mode)
	assert.Equal(t, "model answer", resp.Answer)
	require.Len(t, d.completer.prompts, 1)
	p := d.completer.prompts[0]
	assert.Contains(t, p, "Source: remote.pdf\nRemote work is allowed two days a week.\n\n---\n\nSource: unknown\nManagers approve exceptions.")
	assert.Contains(t, p, "Question: remote work policy?")
	assert.Contains(t, p, "Bullet list of sources")
}

func TestRouter_Policy_SearchError(t *testing.T) {
	r, d := newRouter(t, true)
	d.policies.err = errors.New("SEARCH_TIMEOUT: deadline exceeded")

	resp := r.Route(context.Background(), "holiday policy", models.IntentPolicyQuery, "")

	assert.Equal(t, models.ModeRetrieval, resp.Mode)
	assert.Equal(t, "Failed to search HR documents: SEARCH_TIMEOUT: deadline exceeded", resp.Answer)
	assert.Empty(t, d.completer.prompts)
}

func TestRouter_Policy_WithoutIndexUsesToolPath(t *testing.T) {
	r, d := newRouter(t, false)

	resp := r.Route(context.Background(), "holiday policy", models.IntentPolicyQuery, "")

	assert.Equal(t, models.ModeTool, resp.Mode)
	assert.Equal(t, []models.IntentLabel{models.IntentPolicyQuery}, d.tools.calls)
	assert.Zero(t, d.policies.calls)
}

func TestRouter_ToolIntents(t *testing.T) {
	for _, intent := range []models.IntentLabel{
		models.IntentAddUser, models.IntentUpdateLeaveBalance, models.IntentDeleteUser,
		models.IntentListUsers, models.IntentGetUser,
	} {
		t.Run(string(intent), func(t *testing.T) {
			r, d := newRouter(t, true)

			resp := r.Route(context.Background(), "do it", intent, "u-1")

			assert.Equal(t, models.QueryResponse{Mode: models.ModeTool, Intent: intent, Answer: "tool: do it"}, resp)
			assert.Len(t, d.tools.calls, 1)
			assert.Empty(t, d.users.calls)
		})
	}
}

func TestRouter_CompletionError(t *testing.T) {
	r, d := newRouter(t, true)
	d.completer.err = errors.New("LLM_UNAVAILABLE: dial tcp: connection refused")

	resp := r.Route(context.Background(), "hello", models.IntentGeneral, "")
	assert.Equal(t, "Error calling language model: LLM_UNAVAILABLE: dial tcp: connection refused", resp.Answer)
	assert.Equal(t, models.ModeDirect, resp.Mode)
}

// ==========================
// Policy context
// ==========================

func TestBuildPolicyContext_Caps(t *testing.T) {
	long := strings.Repeat("a", 1500)
	docs := []models.PolicyDocument{
		{Content: long, Source: "one.pdf"},
		{Content: long, Source: "two.pdf"},
		{Content: long, Source: "three.pdf"},
		{Content: long, Source: "four.pdf"},
		{Content: long, Source: "five.pdf"},
		{Content: long, Source: "six.pdf"},
		{Content: long, Source: "seven.pdf"},
	}

	got := BuildPolicyContext(docs, 1200, 6000)
	parts := strings.Split(got, "\n\n---\n\n")

	// 5 x 1200 = 6000 is not over the limit, the sixth snippet crosses it.
	require.Len(t, parts, 6)
	for _, p := range parts {
		lines := strings.SplitN(p, "\n", 2)
		require.Len(t, lines, 2)
		assert.Len(t, lines[1], 1200)
	}
	assert.True(t, strings.HasPrefix(parts[5], "Source: six.pdf\n"))
}

func TestBuildPolicyContext_CountsCharacters(t *testing.T) {
	got := BuildPolicyContext([]models.PolicyDocument{{Content: "  Überstunden\nwerden erfasst  ", Source: "de.pdf"}}, 5, 6000)
	assert.Equal(t, "Source: de.pdf\nÜbers", got)
}

// ==========================
// Pipeline
// ==========================

func TestPipeline_EmptyQuery(t *testing.T) {
	r, _ := newRouter(t, true)
	resolver := &fixedResolver{intent: models.IntentGeneral}
	p := NewPipeline(resolver, r, NewTestLogger(t))

	resp := p.Handle(context.Background(), "   \n", "u-1")

	assert.Equal(t, &models.QueryResponse{Mode: models.ModeError, Intent: models.IntentNone, Answer: "Empty query provided."}, resp)
	assert.Zero(t, resolver.calls)
}

type recordedQuery struct {
	mode, intent string
}

type fakeRecorder struct {
	queries []recordedQuery
}

func (f *fakeRecorder) RecordQuery(_ context.Context, mode, intent string, _ time.Duration) {
	f.queries = append(f.queries, recordedQuery{mode: mode, intent: intent})
}

func TestPipeline_RoutesResolvedIntent(t *testing.T) {
	r, d := newRouter(t, true)
	d.users.user = &models.UserRecord{ID: "u-1", Name: "Ann", RemainingLeaves: 3, TotalLeaves: 20}
	rec := &fakeRecorder{}
	p := NewPipeline(&fixedResolver{intent: models.IntentLeaveBalance}, r, NewTestLogger(t)).WithRecorder(rec)

	resp := p.Handle(context.Background(), "  my leave balance  ", " u-1 ")

	assert.Equal(t, models.ModeDatabase, resp.Mode)
	assert.Equal(t, []string{"u-1"}, d.users.calls)
	assert.Contains(t, d.completer.prompts[0], `"my leave balance"`)
	assert.Equal(t, []recordedQuery{{mode: "database", intent: "leave_balance"}}, rec.queries)
}

// wordEmbedder assigns each distinct word its own dimension.
func wordEmbedder() func(string) []float32 {
	var mu sync.Mutex
	vocab := map[string]int{}
	return func(text string) []float32 {
		mu.Lock()
		defer mu.Unlock()
		vec := make([]float32, 512)
		for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			idx, ok := vocab[w]
			if !ok {
				idx = len(vocab) % len(vec)
				vocab[w] = idx
			}
			vec[idx]++
		}
		return vec
	}
}

func TestPipeline_EndToEndWithLanguageModel(t *testing.T) {
	srv := llmtest.NewServer()
	defer srv.Close()
	srv.EmbedFunc = wordEmbedder()
	srv.Reply("Remaining Leaves: 12", "You have 12 of 24 leave days left.")
	srv.Reply(`"Add new user John with 15 leaves"`, "add_user")

	client := llm.NewClient(
		config.LLMConfig{BaseURL: srv.BaseURL(), Model: "llama3", Timeout: 5000},
		config.EmbeddingConfig{Model: "all-minilm"},
	)
	clog := classifyLogger{NewTestLogger(t)}

	similarity, err := classifyintent.NewSimilarityClassifier(context.Background(), client,
		classifyintent.IntentExamples, classifyintent.DefaultSimilarityThreshold)
	require.NoError(t, err)
	resolver := classifyintent.NewResolver(similarity, classifyintent.NewGenerativeClassifier(client, clog), time.Second, clog)

	users := &fakeUserStore{user: &models.UserRecord{ID: "u-1", Name: "Ann", RemainingLeaves: 12, TotalLeaves: 24}}
	tools := &fakeToolRunner{}
	router := NewRouter(LoadConfig(), client, users, nil, tools, NewTestLogger(t))
	p := NewPipeline(resolver, router, NewTestLogger(t))

	resp := p.Handle(context.Background(), "how many leaves left", "u-1")
	assert.Equal(t, &models.QueryResponse{Mode: models.ModeDatabase, Intent: models.IntentLeaveBalance, Answer: "You have 12 of 24 leave days left."}, resp)

	resp = p.Handle(context.Background(), "Add new user John with 15 leaves", "")
	assert.Equal(t, models.IntentAddUser, resp.Intent)
	assert.Equal(t, models.ModeTool, resp.Mode)
	assert.Equal(t, []models.IntentLabel{models.IntentAddUser}, tools.calls)
}

// ==========================
// Handler
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	r, _ := newRouter(t, true)
	h := NewHandler(LoadConfig(), NewPipeline(&fixedResolver{intent: models.IntentGeneral}, r, NewTestLogger(t)), NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Query: "hi there"})
	require.NoError(t, err)
	assert.Equal(t, &models.QueryResponse{Mode: models.ModeDirect, Intent: models.IntentGeneral, Answer: "model answer"}, out)
}

func TestHandler_Execute_EmptyQuery(t *testing.T) {
	r, _ := newRouter(t, true)
	h := NewHandler(LoadConfig(), NewPipeline(&fixedResolver{intent: models.IntentGeneral}, r, NewTestLogger(t)), NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Query: ""})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}
