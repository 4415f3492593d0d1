package tools

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/factory-launchpad/internal/config"
	"github.com/rxtech-lab/factory-launchpad/internal/workflow"
)

type getEntityAddressTool struct {
	launchpad workflow.Launchpad
}

type GetEntityAddressArguments struct {
	DeploymentID string `json:"deployment_id" validate:"required"`
}

func NewGetEntityAddressTool(launchpad workflow.Launchpad) *getEntityAddressTool {
	return &getEntityAddressTool{launchpad: launchpad}
}

func (g *getEntityAddressTool) GetTool() mcp.Tool {
	return mcp.NewTool("get_entity_address",
		mcp.WithDescription("Look up the address the factory assigned to a deployment id. Read-only; returns an error when no entity was built for the id."),
		mcp.WithString("deployment_id",
			mcp.Required(),
			mcp.Description("Decimal uint256 deployment id"),
		),
	)
}

func (g *getEntityAddressTool) GetHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args GetEntityAddressArguments
		if err := request.BindArguments(&args); err != nil {
			return nil, fmt.Errorf("failed to bind arguments: %w", err)
		}
		if err := validator.New().Struct(args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		id, err := config.ParseDeploymentID(args.DeploymentID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid deployment_id: %v", err)), nil
		}

		return runResult("Lookup", g.launchpad.Resolve(ctx, id))
	}
}
