package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
	"github.com/rxtech-lab/factory-launchpad/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRunWithoutCredentialMakesNoNetworkCalls(t *testing.T) {
	var calls atomic.Int32
	rpc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer rpc.Close()

	t.Setenv("PRIVATE_KEY", "")
	t.Setenv("RPC_URL", rpc.URL)
	t.Setenv("FACTORY_ADDRESS", "0x5454605539E81ecfD30085Eba7ebBe80cB66eEA8")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), nil, &stdout, &stderr)

	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stderr.String(), "signing credential is missing")
	assert.Zero(t, calls.Load())
	assert.Empty(t, stdout.String())
}

func TestRunInvalidRequestMakesNoNetworkCalls(t *testing.T) {
	var calls atomic.Int32
	rpc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer rpc.Close()

	t.Setenv("PRIVATE_KEY", testutil.DeployerPrivateKey)
	t.Setenv("RPC_URL", rpc.URL)
	t.Setenv("FACTORY_ADDRESS", "0x5454605539E81ecfD30085Eba7ebBe80cB66eEA8")
	t.Setenv("REQUEST_FILE", "")
	t.Setenv("ENTITY_OWNER", "")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), nil, &stdout, &stderr)

	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stderr.String(), "invalid build request")
	assert.Zero(t, calls.Load())
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--version"}, &stdout, &stderr)

	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout.String(), "Version: dev")
}

func TestRunUnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitFailed, run(context.Background(), []string{"--nope"}, &stdout, &stderr))
}

func TestExitCode(t *testing.T) {
	entity := common.HexToAddress("0x1111111111111111111111111111111111111111")

	assert.Equal(t, exitOK, exitCode(models.DeploymentResult{Address: entity}))
	assert.Equal(t, exitPartial, exitCode(models.DeploymentResult{
		Partial: true,
		Err:     models.NewDeploymentError(models.ErrorKindConfirmationTimeout, "wait", context.DeadlineExceeded),
	}))
	assert.Equal(t, exitFailed, exitCode(models.DeploymentResult{
		Err: models.NewDeploymentError(models.ErrorKindSubmission, "buildCMTAT", errors.New("rejected")),
	}))
	assert.Equal(t, exitFailed, exitCode(models.DeploymentResult{
		Err: models.NewDeploymentError(models.ErrorKindAddressNotFound, "getAddress", models.ErrAddressNotFound),
	}))
}
