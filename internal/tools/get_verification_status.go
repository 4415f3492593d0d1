package tools

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/factory-launchpad/internal/workflow"
)

type getVerificationStatusTool struct {
	launchpad workflow.Launchpad
}

type GetVerificationStatusArguments struct {
	VerificationID string `json:"verification_id" validate:"required"`
}

func NewGetVerificationStatusTool(launchpad workflow.Launchpad) *getVerificationStatusTool {
	return &getVerificationStatusTool{launchpad: launchpad}
}

func (g *getVerificationStatusTool) GetTool() mcp.Tool {
	return mcp.NewTool("get_verification_status",
		mcp.WithDescription("Check the state of a verification request returned by verify_entity"),
		mcp.WithString("verification_id",
			mcp.Required(),
			mcp.Description("Id returned by verify_entity"),
		),
	)
}

func (g *getVerificationStatusTool) GetHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args GetVerificationStatusArguments
		if err := request.BindArguments(&args); err != nil {
			return nil, fmt.Errorf("failed to bind arguments: %w", err)
		}
		if err := validator.New().Struct(args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		status, err := g.launchpad.VerificationStatus(ctx, args.VerificationID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get verification status: %v", err)), nil
		}
		return jsonResult(fmt.Sprintf("Verification %s is %s", args.VerificationID, status.Status), status)
	}
}
