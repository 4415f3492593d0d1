package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
)

// entityParameters declares the build request fields shared by
// build_entity and verify_entity.
func entityParameters() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("owner",
			mcp.Required(),
			mcp.Description("Address that will own the new entity"),
		),
		mcp.WithString("relay_address",
			mcp.Required(),
			mcp.Description("Trusted forwarder address for meta-transactions"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Entity name"),
		),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Entity symbol"),
		),
		mcp.WithString("token_id",
			mcp.Description("Free-form token identifier"),
		),
		mcp.WithString("terms_uri",
			mcp.Description("URI of the terms document"),
		),
		mcp.WithString("terms_hash",
			mcp.Required(),
			mcp.Description("32-byte hex hash of the terms document (0x-prefixed, 64 hex characters)"),
		),
		mcp.WithBoolean("is_restricted",
			mcp.Description("Whether transfers are restricted"),
		),
		mcp.WithString("registry_address",
			mcp.Required(),
			mcp.Description("Address of the global list registry"),
		),
		mcp.WithString("operator_address",
			mcp.Required(),
			mcp.Description("Address of the operator wallet"),
		),
		mcp.WithBoolean("use_rule_engine",
			mcp.Description("Whether the entity enforces a rule engine"),
		),
		mcp.WithArray("guardians",
			mcp.Description("Guardian addresses, in order"),
			mcp.Items(map[string]any{
				"type":        "string",
				"description": "Guardian address",
			}),
		),
		mcp.WithString("deployment_id",
			mcp.Required(),
			mcp.Description("Decimal uint256 id the factory derives the entity address from. Each id can be built once."),
		),
	}
}

func jsonResult(message string, v any) (*mcp.CallToolResult, error) {
	resultJSON, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message + ": "),
			mcp.NewTextContent(string(resultJSON)),
		},
	}, nil
}

// runResult reports a run. Failed runs are tool errors that still carry the
// full result so a partial outcome can be inspected.
func runResult(action string, result models.DeploymentResult) (*mcp.CallToolResult, error) {
	if result.Err == nil {
		return jsonResult(fmt.Sprintf("%s succeeded, entity address %s", action, result.Address.Hex()), result)
	}

	message := fmt.Sprintf("%s failed (%s)", action, result.Err.Kind)
	if result.Partial {
		message += fmt.Sprintf(". Transaction %s was submitted; check chain state before retrying with the same deployment_id", result.TransactionHash.Hex())
	}
	out, err := jsonResult(message, result)
	if err != nil {
		return nil, err
	}
	out.IsError = true
	return out, nil
}
