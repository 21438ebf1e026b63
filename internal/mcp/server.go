// Package mcp exposes read-only order and report queries as Model Context
// Protocol tools.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/order"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/report"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// Services are the domain services the tools query.
type Services struct {
	Orders  *order.Service
	Reports *report.Service
}

// NewServer creates an MCP server with every delivery tool registered.
func NewServer(s Services) *server.MCPServer {
	srv := server.NewMCPServer(
		"delivery",
		Version,
		server.WithToolCapabilities(true),
	)
	registerTools(srv, s)
	return srv
}
