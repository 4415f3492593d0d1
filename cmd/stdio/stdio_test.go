package main

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
	"github.com/rxtech-lab/factory-launchpad/internal/services"
	"github.com/stretchr/testify/suite"
)

type nopLaunchpad struct{}

func (nopLaunchpad) Build(ctx context.Context, req models.DeploymentRequest, verify bool) models.DeploymentResult {
	return models.DeploymentResult{}
}

func (nopLaunchpad) Resolve(ctx context.Context, id *big.Int) models.DeploymentResult {
	return models.DeploymentResult{DeploymentID: id}
}

func (nopLaunchpad) Verify(ctx context.Context, address common.Address, entityType models.EntityType, req *models.DeploymentRequest) (string, error) {
	return "", nil
}

func (nopLaunchpad) VerificationStatus(ctx context.Context, id string) (*services.VerificationStatus, error) {
	return &services.VerificationStatus{}, nil
}

type StdioServerTestSuite struct {
	suite.Suite
}

func (suite *StdioServerTestSuite) handle(message map[string]any) string {
	srv := newStdioServer(nopLaunchpad{})
	raw, err := json.Marshal(message)
	suite.Require().NoError(err)
	out, err := json.Marshal(srv.GetServer().HandleMessage(context.Background(), raw))
	suite.Require().NoError(err)
	return string(out)
}

func (suite *StdioServerTestSuite) TestInitializeReportsVersion() {
	out := suite.handle(map[string]any{
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

	suite.Contains(out, Version)
	suite.NotContains(out, `"error"`)
}

func (suite *StdioServerTestSuite) TestToolsRegistered() {
	out := suite.handle(map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/list",
	})

	for _, name := range []string{"build_entity", "get_entity_address", "verify_entity", "get_verification_status"} {
		suite.Contains(out, name)
	}
}

func TestStdioServerTestSuite(t *testing.T) {
	suite.Run(t, new(StdioServerTestSuite))
}
