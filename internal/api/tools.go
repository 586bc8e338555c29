package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"kubel/internal/process"
	"kubel/pkg/logging"
)

const defaultOutputLines = 50

// handleInfo is the JSON shape returned for a started process.
type handleInfo struct {
	Resource string `json:"resource,omitempty"`
	ID       string `json:"id"`
	PID      int    `json:"pid"`
	Port     int    `json:"port,omitempty"`
}

func (s *Server) serverTools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("proxy_start",
				mcp.WithDescription("Start kubectl proxy if it is not running and wait until /readyz and /livez answer 200"),
			),
			Handler: s.handleProxyStart,
		},
		{
			Tool: mcp.NewTool("proxy_stop",
				mcp.WithDescription("Stop the kubectl proxy"),
			),
			Handler: s.handleProxyStop,
		},
		{
			Tool: mcp.NewTool("proxy_status",
				mcp.WithDescription("Show the proxy process, its port and whether /readyz and /livez answer 200"),
			),
			Handler: s.handleProxyStatus,
		},
		{
			Tool: mcp.NewTool("status",
				mcp.WithDescription("Show the proxy and every tracked poller"),
			),
			Handler: s.handleStatus,
		},
		{
			Tool: mcp.NewTool("poller_start",
				mcp.WithDescription("Start a kubectl watch for a resource kind"),
				mcp.WithString("resource",
					mcp.Required(),
					mcp.Description("Plural resource kind, e.g. pods"),
				),
				mcp.WithBoolean("force",
					mcp.Description("Replace a running poller for the same resource"),
				),
			),
			Handler: s.handlePollerStart,
		},
		{
			Tool: mcp.NewTool("poller_status",
				mcp.WithDescription("Show the poller tracked for a resource kind"),
				mcp.WithString("resource",
					mcp.Required(),
					mcp.Description("Plural resource kind, e.g. pods"),
				),
			),
			Handler: s.handlePollerStatus,
		},
		{
			Tool: mcp.NewTool("poller_output",
				mcp.WithDescription("Read the most recent output lines of a poller"),
				mcp.WithString("resource",
					mcp.Required(),
					mcp.Description("Plural resource kind, e.g. pods"),
				),
				mcp.WithNumber("lines",
					mcp.Description("Number of lines to return (default 50, 0 for all)"),
				),
			),
			Handler: s.handlePollerOutput,
		},
		{
			Tool: mcp.NewTool("poller_release",
				mcp.WithDescription("Stop the poller for a resource kind"),
				mcp.WithString("resource",
					mcp.Required(),
					mcp.Description("Plural resource kind, e.g. pods"),
				),
			),
			Handler: s.handlePollerRelease,
		},
		{
			Tool: mcp.NewTool("pollers_release_all",
				mcp.WithDescription("Stop every poller"),
			),
			Handler: s.handleReleaseAll,
		},
		{
			Tool: mcp.NewTool("pollers_refresh",
				mcp.WithDescription("Restart every running poller"),
			),
			Handler: s.handleRefresh,
		},
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func info(resource string, h *process.Handle, port int) handleInfo {
	return handleInfo{Resource: resource, ID: h.ID(), PID: h.PID(), Port: port}
}

func (s *Server) handleProxyStart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h, port, err := s.session.StartProxy(ctx)
	if err != nil {
		logging.Error("API", err, "proxy_start failed")
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(info("", h, port))
}

func (s *Server) handleProxyStop(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]bool{"released": s.session.StopProxy()})
}

func (s *Server) handleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.session.Status())
}

func (s *Server) handleProxyStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.session.ProxyStatus(ctx))
}

func (s *Server) handlePollerStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resource, err := req.RequireString("resource")
	if err != nil {
		return mcp.NewToolResultError("resource parameter is required"), nil
	}
	st, ok := s.session.PollerStatus(resource)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no poller tracked for %s", resource)), nil
	}
	return jsonResult(st)
}

func (s *Server) handlePollerStart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resource, err := req.RequireString("resource")
	if err != nil {
		return mcp.NewToolResultError("resource parameter is required"), nil
	}
	force := req.GetBool("force", false)

	h, err := s.session.Watch(ctx, resource, force)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(info(h.Name(), h, 0))
}

func (s *Server) handlePollerOutput(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resource, err := req.RequireString("resource")
	if err != nil {
		return mcp.NewToolResultError("resource parameter is required"), nil
	}
	lines, err := s.session.Output(resource, req.GetInt("lines", defaultOutputLines))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(lines)
}

func (s *Server) handlePollerRelease(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resource, err := req.RequireString("resource")
	if err != nil {
		return mcp.NewToolResultError("resource parameter is required"), nil
	}
	released, ok := s.session.Release(resource)
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf("No poller tracked for %s", resource)), nil
	}
	return jsonResult(map[string]string{"released": released})
}

func (s *Server) handleReleaseAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	released := s.session.ReleaseAll()
	if released == nil {
		released = []string{}
	}
	return jsonResult(map[string][]string{"released": released})
}

func (s *Server) handleRefresh(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	restarted, err := s.session.Refresh(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if restarted == nil {
		restarted = []string{}
	}
	return jsonResult(map[string][]string{"restarted": restarted})
}
