// internal/workers/hr-assistant/invoke-tool/bridge.go
package invoketool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	TransportStreamable = "streamable"
	TransportSSE        = "sse"
)

var (
	ErrToolConnection = errors.New("TOOL_CONNECTION_FAILED")
	ErrToolExecution  = errors.New("TOOL_EXECUTION_FAILED")
)

// ToolExecutor dispatches one tool call and returns its text result.
type ToolExecutor interface {
	Execute(ctx context.Context, tool string, args map[string]interface{}) (string, error)
}

// TransportFactory yields a fresh transport per session.
type TransportFactory func() mcp.Transport

// MCPExecutor opens one MCP session per call: connect (initialize handshake),
// a single tools/call, close.
type MCPExecutor struct {
	client    *mcp.Client
	transport TransportFactory
	logger    Logger
}

func NewMCPExecutor(transport TransportFactory, version string, log Logger) *MCPExecutor {
	return &MCPExecutor{
		client:    mcp.NewClient(&mcp.Implementation{Name: "hr-assistant", Version: version}, nil),
		transport: transport,
		logger:    log,
	}
}

// HTTPTransport builds client transports for a remote tool server.
func HTTPTransport(endpoint, kind string, timeout time.Duration) (TransportFactory, error) {
	httpClient := &http.Client{Timeout: timeout}
	switch kind {
	case "", TransportStreamable:
		return func() mcp.Transport {
			return &mcp.StreamableClientTransport{
				Endpoint:             endpoint,
				HTTPClient:           httpClient,
				MaxRetries:           1,
				DisableStandaloneSSE: true,
			}
		}, nil
	case TransportSSE:
		return func() mcp.Transport {
			return &mcp.SSEClientTransport{Endpoint: endpoint, HTTPClient: httpClient}
		}, nil
	default:
		return nil, fmt.Errorf("unsupported MCP transport %q", kind)
	}
}

func (e *MCPExecutor) Execute(ctx context.Context, tool string, args map[string]interface{}) (string, error) {
	session, err := e.client.Connect(ctx, e.transport(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrToolConnection, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			e.logger.Warn("failed to close tool session", map[string]interface{}{"error": cerr.Error()})
		}
	}()

	if args == nil {
		args = map[string]interface{}{}
	}
	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: tool, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrToolExecution, err)
	}

	text := resultText(result)
	if result.IsError {
		return "", fmt.Errorf("%w: %s", ErrToolExecution, text)
	}
	return text, nil
}

// resultText joins the text fragments of a result with newlines and falls
// back to the JSON form of the whole result.
func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, c := range result.Content {
		if t, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, t.Text)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, "\n")
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(data)
}
