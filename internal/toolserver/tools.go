// internal/toolserver/tools.go
package toolserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"hr-assistant/internal/common/metrics"
	"hr-assistant/internal/models"
	queryuserstore "hr-assistant/internal/workers/data-access/query-user-store"
	"hr-assistant/pkg/registry"
)

type toolFunc func(ctx context.Context, args map[string]interface{}) (interface{}, error)

func (s *Server) toolHandlers() map[string]toolFunc {
	return map[string]toolFunc{
		models.ToolAddUser:            s.addUser,
		models.ToolUpdateLeaveBalance: s.updateLeaveBalance,
		models.ToolDeleteUser:         s.deleteUser,
		models.ToolListUsers:          s.listUsers,
		models.ToolGetUser:            s.getUser,
	}
}

// wrap validates arguments against the catalog schema and renders the
// outcome as JSON text. Failures are reported as tool errors.
func (s *Server) wrap(def *registry.ToolDefinition, fn toolFunc) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result := &mcp.CallToolResult{}

		out, err := s.call(ctx, def, fn, req.Params.Arguments)
		status := "ok"
		if err != nil {
			status = "error"
			s.logger.Warn("tool call failed", map[string]interface{}{
				"tool":  def.Name,
				"error": err.Error(),
			})
			result.SetError(err)
		} else {
			data, merr := json.Marshal(out)
			if merr != nil {
				result.SetError(merr)
				status = "error"
			} else {
				result.Content = []mcp.Content{&mcp.TextContent{Text: string(data)}}
			}
		}

		metrics.ToolCalls.WithLabelValues(def.Name, "served_"+status).Inc()
		s.logger.Info("tool call served", map[string]interface{}{
			"tool":     def.Name,
			"status":   status,
			"duration": time.Since(start).String(),
		})
		return result, nil
	}
}

func (s *Server) call(ctx context.Context, def *registry.ToolDefinition, fn toolFunc, raw json.RawMessage) (interface{}, error) {
	args, err := decodeArgs(def, raw)
	if err != nil {
		return nil, err
	}
	if def.Name == models.ToolAddUser {
		if v, ok := args["leave_balance"]; !ok || v == nil {
			args["leave_balance"] = s.defaults.LeaveBalance
		}
		if v, ok := args["total_leaves"]; !ok || v == nil {
			args["total_leaves"] = s.defaults.TotalLeaves
		}
	}
	if err := s.catalog.ValidateArguments(def.Name, args); err != nil {
		return nil, err
	}
	return fn(ctx, args)
}

func userRef(args map[string]interface{}) queryuserstore.UserRef {
	return queryuserstore.UserRef{ID: stringArg(args, "user_id"), Username: stringArg(args, "username")}
}

func withRef(ref queryuserstore.UserRef, err error) error {
	if errors.Is(err, queryuserstore.ErrUserNotFound) {
		return fmt.Errorf("%w: %s", err, ref)
	}
	return err
}

func (s *Server) addUser(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	user, err := s.store.AddUser(ctx,
		stringArg(args, "username"),
		intArg(args, "leave_balance", s.defaults.LeaveBalance),
		intArg(args, "total_leaves", s.defaults.TotalLeaves),
	)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "created", "user": user}, nil
}

func (s *Server) updateLeaveBalance(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	ref := userRef(args)
	user, err := s.store.UpdateLeaveBalance(ctx, ref, intArg(args, "leave_balance", 0))
	if err != nil {
		return nil, withRef(ref, err)
	}
	return map[string]interface{}{"status": "updated", "user": user}, nil
}

func (s *Server) deleteUser(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	ref := userRef(args)
	user, err := s.store.DeleteUser(ctx, ref)
	if err != nil {
		return nil, withRef(ref, err)
	}
	return map[string]interface{}{"status": "deleted", "user": user}, nil
}

func (s *Server) listUsers(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	users, err := s.store.ListUsers(ctx, intArg(args, "limit", queryuserstore.DefaultListLimit))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"count": len(users), "users": users}, nil
}

func (s *Server) getUser(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	ref := userRef(args)
	user, err := s.store.FindUser(ctx, ref)
	if err != nil {
		return nil, withRef(ref, err)
	}
	return map[string]interface{}{"user": user}, nil
}
