package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-assistant/pkg/registry"
)

func seedRegistry(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "tool-registry.json")
	require.NoError(t, saveRegistry(registry.Default(), path))
	return path
}

func TestAddTool(t *testing.T) {
	path := seedRegistry(t)

	tool := registry.ToolDefinition{
		Name:        "reset_leaves",
		Description: "Reset a balance to the annual allowance.",
		Mutating:    true,
		Arguments:   []string{"username"},
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{"username": map[string]interface{}{"type": "string"}},
		},
	}
	require.NoError(t, addTool(path, tool))

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	got, ok := reg.Lookup("reset_leaves")
	require.True(t, ok)
	assert.True(t, got.Mutating)
	assert.NotEmpty(t, reg.LastUpdated)

	assert.Error(t, addTool(path, tool), "duplicate names are rejected")
}

func TestAddTool_InvalidSchemaNotWritten(t *testing.T) {
	path := seedRegistry(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	err = addTool(path, registry.ToolDefinition{
		Name:        "broken",
		Arguments:   []string{"missing"},
		InputSchema: map[string]interface{}{"type": "object"},
	})
	require.Error(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAddTool_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tools.json")
	require.NoError(t, addTool(path, registry.ToolDefinition{
		Name:        "ping",
		InputSchema: map[string]interface{}{"type": "object"},
	}))

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ping"}, reg.Names())
}

func TestUpdateTool(t *testing.T) {
	path := seedRegistry(t)

	require.NoError(t, updateTool(path, "list_users", "description", "List everyone."))
	require.NoError(t, updateTool(path, "list_users", "tags", "users, read ,"))
	require.NoError(t, updateTool(path, "list_users", "mutating", "false"))

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	tool, _ := reg.Lookup("list_users")
	assert.Equal(t, "List everyone.", tool.Description)
	assert.Equal(t, []string{"users", "read"}, tool.Tags)

	assert.Error(t, updateTool(path, "nope", "description", "x"))
	assert.Error(t, updateTool(path, "list_users", "color", "x"))
	assert.Error(t, updateTool(path, "list_users", "mutating", "maybe"))
	assert.Error(t, updateTool(path, "list_users", "arguments", "unknown_arg"))
}

func TestValidateCommand(t *testing.T) {
	path := seedRegistry(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"validate", "--path", path})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Found 5 tools")
}

func TestReadSchema(t *testing.T) {
	schema, err := readSchema(`{"type":"object"}`)
	require.NoError(t, err)
	assert.Equal(t, "object", schema["type"])

	file := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"type":"object","properties":{}}`), 0o644))
	schema, err = readSchema("@" + file)
	require.NoError(t, err)
	assert.Contains(t, schema, "properties")

	_, err = readSchema("{")
	assert.Error(t, err)
}
