package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rxtech-lab/factory-launchpad/internal/contracts"
	"github.com/rxtech-lab/factory-launchpad/internal/metrics"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
	"go.uber.org/zap"
)

const codeFormatStandardJSON = "solidity-standard-json-input"

// VerificationRequest identifies a deployed entity and the arguments it was
// initialized with.
type VerificationRequest struct {
	Address    common.Address
	EntityType models.EntityType
	// ArgumentTypes describes ConstructorArgs. Both may be empty.
	ArgumentTypes   abi.Arguments
	ConstructorArgs []any
}

// VerificationService publishes entity source to a block explorer. Failures
// are reported as verification errors and never affect a deployment.
type VerificationService interface {
	Verify(ctx context.Context, req VerificationRequest) (string, error)
}

// VerificationStatus is the explorer's view of a submitted request.
type VerificationStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type ZkSyncVerifierOptions struct {
	URL           string
	SourceFile    string
	ZksolcVersion string
	SolcVersion   string
	Optimization  bool
	HTTPClient    *http.Client
}

// ZkSyncVerifier talks to the zkSync explorer's contract_verification API.
type ZkSyncVerifier struct {
	url           string
	sourceFile    string
	zksolcVersion string
	solcVersion   string
	optimization  bool
	client        *http.Client
	logger        *zap.Logger
}

type zkSyncVerificationPayload struct {
	ContractAddress       string          `json:"contractAddress"`
	SourceCode            json.RawMessage `json:"sourceCode"`
	CodeFormat            string          `json:"codeFormat"`
	ContractName          string          `json:"contractName"`
	CompilerZksolcVersion string          `json:"compilerZksolcVersion"`
	CompilerSolcVersion   string          `json:"compilerSolcVersion"`
	OptimizationUsed      bool            `json:"optimizationUsed"`
	ConstructorArguments  string          `json:"constructorArguments"`
}

// NewZkSyncVerifier creates a verifier for the explorer at opts.URL
func NewZkSyncVerifier(opts ZkSyncVerifierOptions, logger *zap.Logger) *ZkSyncVerifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ZkSyncVerifier{
		url:           strings.TrimSuffix(opts.URL, "/"),
		sourceFile:    opts.SourceFile,
		zksolcVersion: opts.ZksolcVersion,
		solcVersion:   opts.SolcVersion,
		optimization:  opts.Optimization,
		client:        client,
		logger:        logger,
	}
}

// Verify submits the entity and returns the explorer's request id.
func (v *ZkSyncVerifier) Verify(ctx context.Context, req VerificationRequest) (id string, err error) {
	defer func() {
		result := "submitted"
		if err != nil {
			result = "failed"
			err = models.NewDeploymentError(models.ErrorKindVerification, "verify", err)
		}
		metrics.Verifications.WithLabelValues(string(req.EntityType), result).Inc()
	}()

	if _, err := models.ParseEntityType(string(req.EntityType)); err != nil {
		return "", err
	}
	if req.Address == (common.Address{}) {
		return "", fmt.Errorf("entity address is required")
	}
	if v.url == "" {
		return "", fmt.Errorf("verification url is not configured")
	}

	source, err := v.loadSource()
	if err != nil {
		return "", err
	}

	encoded, err := contracts.EncodeArguments(req.ArgumentTypes, req.ConstructorArgs)
	if err != nil {
		return "", err
	}

	payload := zkSyncVerificationPayload{
		ContractAddress:       req.Address.Hex(),
		SourceCode:            source,
		CodeFormat:            codeFormatStandardJSON,
		ContractName:          req.EntityType.FullyQualifiedName(),
		CompilerZksolcVersion: v.zksolcVersion,
		CompilerSolcVersion:   v.solcVersion,
		OptimizationUsed:      v.optimization,
		ConstructorArguments:  hexutil.Encode(encoded),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	respBody, err := v.do(httpReq)
	if err != nil {
		return "", err
	}

	id = strings.Trim(strings.TrimSpace(string(respBody)), `"`)
	if id == "" {
		return "", fmt.Errorf("explorer returned an empty verification id")
	}
	v.logger.Info("verification submitted",
		zap.String("address", req.Address.Hex()),
		zap.String("contract", payload.ContractName),
		zap.String("verification_id", id),
	)
	return id, nil
}

// Status fetches the state of a previously submitted verification request.
func (v *ZkSyncVerifier) Status(ctx context.Context, id string) (*VerificationStatus, error) {
	if strings.TrimSpace(id) == "" {
		return nil, models.NewDeploymentError(models.ErrorKindVerification, "status", fmt.Errorf("verification id is required"))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, v.url+"/"+id, nil)
	if err != nil {
		return nil, models.NewDeploymentError(models.ErrorKindVerification, "status", fmt.Errorf("failed to create request: %w", err))
	}

	body, err := v.do(httpReq)
	if err != nil {
		return nil, models.NewDeploymentError(models.ErrorKindVerification, "status", err)
	}

	var status VerificationStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, models.NewDeploymentError(models.ErrorKindVerification, "status", fmt.Errorf("failed to decode response: %w", err))
	}
	return &status, nil
}

func (v *ZkSyncVerifier) do(req *http.Request) ([]byte, error) {
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("explorer returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// loadSource reads the standard-json compiler input for the entity sources.
func (v *ZkSyncVerifier) loadSource() (json.RawMessage, error) {
	if v.sourceFile == "" {
		return nil, fmt.Errorf("verification source file is not configured")
	}
	data, err := os.ReadFile(v.sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("source file %s is not valid JSON", v.sourceFile)
	}
	return json.RawMessage(data), nil
}
