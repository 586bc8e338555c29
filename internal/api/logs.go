package api

import (
	"github.com/mark3labs/mcp-go/mcp"

	"kubel/pkg/logging"
)

// logNotificationMethod is the MCP method for server log messages.
const logNotificationMethod = "notifications/message"

// ForwardLogs sends editor-mode log entries to every connected client as
// MCP logging notifications. It returns when entries is closed.
func (s *Server) ForwardLogs(entries <-chan logging.LogEntry) {
	for e := range entries {
		s.mcp.SendNotificationToAllClients(logNotificationMethod, logParams(e))
	}
}

func logParams(e logging.LogEntry) map[string]any {
	data := map[string]any{
		"message": e.Message,
		"time":    e.Timestamp,
	}
	if e.Err != nil {
		data["error"] = e.Err.Error()
	}
	return map[string]any{
		"level":  mcpLevel(e.Level),
		"logger": e.Subsystem,
		"data":   data,
	}
}

func mcpLevel(l logging.LogLevel) mcp.LoggingLevel {
	switch l {
	case logging.LevelDebug:
		return mcp.LoggingLevelDebug
	case logging.LevelWarn:
		return mcp.LoggingLevelWarning
	case logging.LevelError:
		return mcp.LoggingLevelError
	default:
		return mcp.LoggingLevelInfo
	}
}
