// internal/toolserver/server.go
package toolserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"hr-assistant/internal/common/logger"
	"hr-assistant/internal/models"
	queryuserstore "hr-assistant/internal/workers/data-access/query-user-store"
	"hr-assistant/pkg/registry"
)

const (
	TransportStreamable = "streamable"
	TransportSSE        = "sse"
)

// UserStore is the subset of the user store the tools mutate and read.
type UserStore interface {
	AddUser(ctx context.Context, username string, leaveBalance, totalLeaves int) (*models.UserRecord, error)
	UpdateLeaveBalance(ctx context.Context, ref queryuserstore.UserRef, leaveBalance int) (*models.UserRecord, error)
	DeleteUser(ctx context.Context, ref queryuserstore.UserRef) (*models.UserRecord, error)
	ListUsers(ctx context.Context, limit int) ([]models.UserRecord, error)
	FindUser(ctx context.Context, ref queryuserstore.UserRef) (*models.UserRecord, error)
}

type Defaults struct {
	LeaveBalance int
	TotalLeaves  int
}

// Server exposes the catalog tools over MCP, backed by the user store.
type Server struct {
	mcp      *mcp.Server
	store    UserStore
	catalog  *registry.ToolRegistry
	defaults Defaults
	logger   logger.Logger
}

func New(store UserStore, catalog *registry.ToolRegistry, defaults Defaults, version string, log logger.Logger) (*Server, error) {
	s := &Server{
		mcp:      mcp.NewServer(&mcp.Implementation{Name: "hr-tools", Version: version}, nil),
		store:    store,
		catalog:  catalog,
		defaults: defaults,
		logger:   log.WithFields(map[string]interface{}{"component": "tool-server"}),
	}

	handlers := s.toolHandlers()
	for i := range catalog.Tools {
		def := &catalog.Tools[i]
		fn, ok := handlers[def.Name]
		if !ok {
			return nil, fmt.Errorf("%w: no implementation for %s", registry.ErrToolNotFound, def.Name)
		}
		s.mcp.AddTool(mcpTool(def), s.wrap(def, fn))
	}
	return s, nil
}

// MCP returns the underlying server, e.g. for in-memory transports.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Handler serves the tools over streamable HTTP or SSE.
func (s *Server) Handler(transport string) (http.Handler, error) {
	getServer := func(*http.Request) *mcp.Server { return s.mcp }
	switch transport {
	case "", TransportStreamable:
		return mcp.NewStreamableHTTPHandler(getServer, nil), nil
	case TransportSSE:
		return mcp.NewSSEHandler(getServer, nil), nil
	default:
		return nil, fmt.Errorf("unsupported MCP transport %q", transport)
	}
}

func mcpTool(def *registry.ToolDefinition) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{ReadOnlyHint: !def.Mutating}
	if def.Mutating {
		destructive := def.Name == models.ToolDeleteUser
		annotations.DestructiveHint = &destructive
	}
	return &mcp.Tool{
		Name:        def.Name,
		Title:       def.DisplayName,
		Description: def.Description,
		InputSchema: def.InputSchema,
		Annotations: annotations,
	}
}
