package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/factory-launchpad/internal/config"
	"github.com/rxtech-lab/factory-launchpad/internal/workflow"
)

type buildEntityTool struct {
	launchpad workflow.Launchpad
}

type BuildEntityArguments struct {
	config.EntityConfig
	Verify bool `json:"verify"`
}

func NewBuildEntityTool(launchpad workflow.Launchpad) *buildEntityTool {
	return &buildEntityTool{launchpad: launchpad}
}

func (b *buildEntityTool) GetTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Build a new CMTAT entity through the factory, wait for confirmations and return its deterministic address. Reusing a deployment_id is rejected by the factory."),
	}
	opts = append(opts, entityParameters()...)
	opts = append(opts, mcp.WithBoolean("verify",
		mcp.Description("Submit the new entity to the block explorer for verification. Verification failures never fail the build."),
	))
	return mcp.NewTool("build_entity", opts...)
}

func (b *buildEntityTool) GetHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args BuildEntityArguments
		if err := request.BindArguments(&args); err != nil {
			return nil, fmt.Errorf("failed to bind arguments: %w", err)
		}

		req, err := args.Resolve()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		return runResult("Build", b.launchpad.Build(ctx, req, args.Verify))
	}
}
