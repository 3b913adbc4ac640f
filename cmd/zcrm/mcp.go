package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/zx06/zcrm/internal/config"
	mcp_pkg "github.com/zx06/zcrm/internal/mcp"
)

// NewMCPCommand creates the MCP command group
func NewMCPCommand() *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP (Model Context Protocol) server commands",
	}
	mcpCmd.AddCommand(newMCPServerCommand())
	return mcpCmd
}

// newMCPServerCommand creates the MCP server command
func newMCPServerCommand() *cobra.Command {
	opts := mcp_pkg.ServerOptions{}
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start MCP server for AI assistant integration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flagOpts := mcp_pkg.ServerOptions{Getenv: os.Getenv}
			if cmd.Flags().Changed("transport") {
				flagOpts.Transport = opts.Transport
			}
			if cmd.Flags().Changed("http-addr") {
				flagOpts.HTTPAddr = opts.HTTPAddr
			}
			if cmd.Flags().Changed("http-auth-token") {
				flagOpts.HTTPAuthToken = opts.HTTPAuthToken
			}
			return runMCPServer(cmd, flagOpts)
		},
	}
	cmd.Flags().StringVar(&opts.Transport, "transport", mcp_pkg.TransportStdio, "MCP transport: stdio|streamable_http")
	cmd.Flags().StringVar(&opts.HTTPAddr, "http-addr", mcp_pkg.DefaultHTTPAddr, "Streamable HTTP listen address")
	cmd.Flags().StringVar(&opts.HTTPAuthToken, "http-auth-token", "", "Streamable HTTP auth token (required for streamable_http)")
	return cmd
}

// runMCPServer runs the MCP server
func runMCPServer(cmd *cobra.Command, opts mcp_pkg.ServerOptions) error {
	cfg, _, xe := config.LoadConfig(config.Options{ConfigPath: GlobalConfig.ConfigStr})
	if xe != nil {
		return xe
	}

	sc, xe := mcp_pkg.ResolveServerConfig(opts, cfg.MCP)
	if xe != nil {
		return xe
	}

	server, err := mcp_pkg.CreateServer(version, &cfg, nil)
	if err != nil {
		return err
	}
	return mcp_pkg.Serve(cmd.Context(), server, sc)
}
