package tools

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/factory-launchpad/internal/config"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
	"github.com/rxtech-lab/factory-launchpad/internal/workflow"
)

type verifyEntityTool struct {
	launchpad workflow.Launchpad
}

type VerifyEntityArguments struct {
	Address    string               `json:"address" validate:"required,eth_addr"`
	EntityType string               `json:"entity_type" validate:"required,oneof=CMTAT GlobalList CMTATFactory"`
	Request    *config.EntityConfig `json:"request,omitempty" validate:"-"`
}

type VerifyEntityResult struct {
	Address        string `json:"address"`
	EntityType     string `json:"entity_type"`
	ContractName   string `json:"contract_name"`
	VerificationID string `json:"verification_id"`
}

func NewVerifyEntityTool(launchpad workflow.Launchpad) *verifyEntityTool {
	return &verifyEntityTool{launchpad: launchpad}
}

func (v *verifyEntityTool) GetTool() mcp.Tool {
	return mcp.NewTool("verify_entity",
		mcp.WithDescription("Submit a deployed entity's source to the block explorer for verification. Best-effort: a failure here never affects the deployment."),
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description("Address of the deployed entity"),
		),
		mcp.WithString("entity_type",
			mcp.Required(),
			mcp.Enum(entityTypeNames()...),
			mcp.Description("Kind of contract being verified"),
		),
		mcp.WithObject("request",
			mcp.Description("Build request the entity was created with (same fields as build_entity). Required for CMTAT so its initialization arguments can be encoded."),
		),
	)
}

func (v *verifyEntityTool) GetHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args VerifyEntityArguments
		if err := request.BindArguments(&args); err != nil {
			return nil, fmt.Errorf("failed to bind arguments: %w", err)
		}
		if err := validator.New().Struct(args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		var req *models.DeploymentRequest
		if args.Request != nil {
			resolved, err := args.Request.Resolve()
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Invalid request: %v", err)), nil
			}
			req = &resolved
		}

		entityType := models.EntityType(args.EntityType)
		address := common.HexToAddress(args.Address)
		id, err := v.launchpad.Verify(ctx, address, entityType, req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Verification failed: %v", err)), nil
		}

		return jsonResult("Verification submitted", VerifyEntityResult{
			Address:        address.Hex(),
			EntityType:     string(entityType),
			ContractName:   entityType.FullyQualifiedName(),
			VerificationID: id,
		})
	}
}

func entityTypeNames() []string {
	types := models.EntityTypes()
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}
	return names
}
