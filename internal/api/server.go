package api

import (
	"github.com/mark3labs/mcp-go/server"

	"kubel/pkg/logging"
)

// Server wraps an MCP server whose tools drive a Session.
type Server struct {
	session Session
	mcp     *server.MCPServer
}

// NewServer registers the ledger tools for session.
func NewServer(session Session, version string) (*Server, error) {
	if session == nil {
		return nil, ErrSessionRequired
	}
	s := &Server{session: session}
	s.mcp = server.NewMCPServer(
		"kubel",
		version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)
	s.mcp.AddTools(s.serverTools()...)
	return s, nil
}

// MCPServer returns the underlying server, e.g. for an alternative transport.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio blocks serving MCP on stdin/stdout until the input closes or
// the process is signalled.
func (s *Server) ServeStdio() error {
	logging.Info("API", "Serving MCP on stdio")
	return server.ServeStdio(s.mcp)
}
