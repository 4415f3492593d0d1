package mcp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/factory-launchpad/internal/tools"
	"github.com/rxtech-lab/factory-launchpad/internal/workflow"
)

const serverName = "Factory Launchpad MCP Server"

type tool interface {
	GetTool() mcp.Tool
	GetHandler() server.ToolHandlerFunc
}

type MCPServer struct {
	server *server.MCPServer
}

func NewMCPServer(launchpad workflow.Launchpad, version string) *MCPServer {
	mcpServer := &MCPServer{}
	mcpServer.InitializeTools(launchpad, version)
	return mcpServer
}

func (s *MCPServer) InitializeTools(launchpad workflow.Launchpad, version string) {
	srv := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(true),
	)

	srv.AddPrompt(mcp.NewPrompt("factory-launchpad-usage",
		mcp.WithPromptDescription("Instructions for building and verifying entities through the factory"),
		mcp.WithArgument("tool_category",
			mcp.ArgumentDescription("Category of tools to get instructions for (build, verification, or all)"),
			mcp.RequiredArgument(),
		),
	), func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		category := request.Params.Arguments["tool_category"]
		if category == "" {
			return nil, fmt.Errorf("tool_category is required")
		}

		return mcp.NewGetPromptResult(
			fmt.Sprintf("Factory Launchpad Tools - %s", category),
			[]mcp.PromptMessage{
				mcp.NewPromptMessage(
					mcp.RoleUser,
					mcp.NewTextContent(getToolInstructions(category)),
				),
			},
		), nil
	})

	for _, t := range []tool{
		tools.NewBuildEntityTool(launchpad),
		tools.NewGetEntityAddressTool(launchpad),
		tools.NewVerifyEntityTool(launchpad),
		tools.NewGetVerificationStatusTool(launchpad),
	} {
		srv.AddTool(t.GetTool(), t.GetHandler())
	}

	s.server = srv
}

// StartStdioServer serves MCP over stdin/stdout until the input closes.
func (s *MCPServer) StartStdioServer() error {
	return server.ServeStdio(s.server)
}

// StreamableHTTPHandler returns an http.Handler serving MCP at endpoint.
func (s *MCPServer) StreamableHTTPHandler(endpoint string) http.Handler {
	return server.NewStreamableHTTPServer(s.server,
		server.WithEndpointPath(endpoint),
		server.WithStateLess(true),
	)
}

func (s *MCPServer) GetServer() *server.MCPServer {
	return s.server
}

func getToolInstructions(category string) string {
	switch category {
	case "build":
		return `Build Tools:

1. build_entity - Build a CMTAT entity through the factory
   Usage: Provide every address explicitly and a fresh deployment_id. The tool waits
   for the configured confirmations and returns the entity address. When the result
   is partial, a transaction was submitted but not confirmed; inspect chain state
   with get_entity_address before retrying with the same deployment_id.

2. get_entity_address - Look up the address for a deployment_id (read-only)
   Usage: Returns an error when the factory has no entity for the id`

	case "verification":
		return `Verification Tools:

1. verify_entity - Submit an entity to the block explorer
   Usage: entity_type is one of CMTAT, GlobalList, CMTATFactory. CMTAT needs the
   original build request so its initialization arguments can be encoded.

2. get_verification_status - Check a submitted verification
   Usage: Pass the verification_id returned by verify_entity`

	case "all":
		return `Factory Launchpad MCP Tools Overview:

BUILD (2 tools):
- build_entity: Build an entity and wait for confirmations
- get_entity_address: Resolve the address of a built entity

VERIFICATION (2 tools):
- verify_entity: Submit source for explorer verification
- get_verification_status: Poll a verification request

Verification is best-effort and never changes the outcome of a build.`

	default:
		return fmt.Sprintf("Unknown category '%s'. Available categories: build, verification, all", category)
	}
}
