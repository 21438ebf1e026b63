package cli

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/handler"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/mcp"
)

func newMCPCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve order and report tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, open, func(_ context.Context, s handler.Services) error {
				return server.ServeStdio(mcp.NewServer(mcp.Services{
					Orders:  s.Orders,
					Reports: s.Reports,
				}))
			})
		},
	}
	cmd.AddCommand(serve)
	return cmd
}
