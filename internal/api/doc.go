// Package api exposes a kubel session over the Model Context Protocol so an
// editor (or an agent acting for one) can drive the process ledger: start
// and stop the proxy, start, inspect and release pollers, and read their
// captured output.
//
// The server speaks MCP over stdio. Every ledger error is reported as a tool
// error result rather than a protocol error, so AlreadyRunning and
// ProxyStart failures reach the user verbatim.
package api
