package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `
database:
  postgres:
    host: localhost
    database: hr
    user: hr
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "hr-assistant", cfg.App.Name)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "gemma3:1b", cfg.LLM.Model)
	assert.Equal(t, cfg.LLM.BaseURL, cfg.Embedding.BaseURL)
	assert.Equal(t, 0.55, cfg.Assistant.SimilarityThreshold)
	assert.Equal(t, 4, cfg.Assistant.RetrievalK)
	assert.Equal(t, 1200, cfg.Assistant.MaxCharsPerDoc)
	assert.Equal(t, 6000, cfg.Assistant.MaxTotalChars)
	assert.Equal(t, 10, cfg.Assistant.DefaultLeaveBalance)
	assert.Equal(t, 100, cfg.Assistant.DefaultTotalLeaves)
	assert.Equal(t, "streamable", cfg.MCP.Transport)
	assert.Equal(t, ":8000", cfg.API.Address)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.API.AllowedOrigins)
	assert.Equal(t, "hr_users", cfg.Database.Postgres.UsersTable)
	assert.False(t, cfg.Database.Elasticsearch.Enabled())
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "http://10.0.0.5:11434/")
	t.Setenv("LLM_MODEL", "llama3.2")
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example,http://b.example")

	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:11434/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "llama3.2", cfg.LLM.Model)
	assert.Equal(t, ":9000", cfg.API.Address)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.API.AllowedOrigins)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing postgres host",
			body:    "database:\n  postgres:\n    database: hr\n    user: hr\n",
			wantErr: "database.postgres.host is required",
		},
		{
			name:    "camunda enabled without broker",
			body:    minimalConfig + "camunda:\n  enabled: true\n",
			wantErr: "camunda.broker_address is required",
		},
		{
			name:    "unknown mcp transport",
			body:    minimalConfig + "mcp:\n  transport: stdio\n",
			wantErr: "mcp.transport must be streamable or sse",
		},
		{
			name:    "sns without topic",
			body:    minimalConfig + "notifications:\n  sns:\n    enabled: true\n",
			wantErr: "notifications.sns.topic_arn is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_USER", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_PolicyIndexEnabled(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig+`  elasticsearch:
    addresses: ["http://localhost:9200"]
    policy_index: hr-policies
`))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9200", cfg.Database.Elasticsearch.GetURL())
	assert.True(t, cfg.Database.Elasticsearch.Enabled())
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"hr-handle-query": {Enabled: false, MaxJobsActive: 2, Timeout: 1000},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "hr-handle-query"))
	assert.True(t, IsWorkerEnabled(cfg, "hr-classify-intent"))
	assert.Equal(t, 2, GetWorkerConfig(cfg, "hr-handle-query").MaxJobsActive)
	assert.Equal(t, 5, GetWorkerConfig(cfg, "unknown").MaxJobsActive)
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
