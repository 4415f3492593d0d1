package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
	"github.com/rxtech-lab/factory-launchpad/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLaunchpad struct {
	resolved common.Address
}

func (f *fakeLaunchpad) Build(ctx context.Context, req models.DeploymentRequest, verify bool) models.DeploymentResult {
	return models.DeploymentResult{State: models.DeploymentStateConfirmed, Address: f.resolved}
}

func (f *fakeLaunchpad) Resolve(ctx context.Context, id *big.Int) models.DeploymentResult {
	return models.DeploymentResult{State: models.DeploymentStateIdle, DeploymentID: id, Address: f.resolved}
}

func (f *fakeLaunchpad) Verify(ctx context.Context, address common.Address, entityType models.EntityType, req *models.DeploymentRequest) (string, error) {
	return "1", nil
}

func (f *fakeLaunchpad) VerificationStatus(ctx context.Context, id string) (*services.VerificationStatus, error) {
	return &services.VerificationStatus{Status: "queued"}, nil
}

func handle(t *testing.T, srv *MCPServer, message map[string]any) string {
	raw, err := json.Marshal(message)
	require.NoError(t, err)
	response := srv.GetServer().HandleMessage(context.Background(), raw)
	out, err := json.Marshal(response)
	require.NoError(t, err)
	return string(out)
}

func TestMCPServerListsTools(t *testing.T) {
	srv := NewMCPServer(&fakeLaunchpad{}, "test")

	out := handle(t, srv, map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/list",
	})

	for _, name := range []string{"build_entity", "get_entity_address", "verify_entity", "get_verification_status"} {
		assert.Contains(t, out, name)
	}
}

func TestMCPServerCallsTool(t *testing.T) {
	entity := common.HexToAddress("0x1111111111111111111111111111111111111111")
	srv := NewMCPServer(&fakeLaunchpad{resolved: entity}, "test")

	out := handle(t, srv, map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      "get_entity_address",
			"arguments": map[string]any{"deployment_id": "8029"},
		},
	})

	assert.Contains(t, out, entity.Hex())
}

func TestStreamableHTTPHandler(t *testing.T) {
	srv := NewMCPServer(&fakeLaunchpad{}, "test")
	httpServer := httptest.NewServer(srv.StreamableHTTPHandler("/mcp"))
	defer httpServer.Close()

	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": "2024-11-05",
			"capabilities":    map[string]any{},
			"clientInfo": map[string]any{
				"name":    "test-client",
				"version": "1.0.0",
			},
		},
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, httpServer.URL+"/mcp", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestToolInstructions(t *testing.T) {
	assert.Contains(t, getToolInstructions("build"), "build_entity")
	assert.Contains(t, getToolInstructions("verification"), "verify_entity")
	assert.Contains(t, getToolInstructions("unknown"), "Unknown category")
}
