package contracts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
)

//go:embed artifacts/CMTATFactory.json
var factoryJSON []byte

const (
	BuildMethod      = "buildCMTAT"
	GetAddressMethod = "getAddress"
)

// SentinelAddress is what getAddress returns for an id that was never built.
var SentinelAddress = common.Address{}

// ContractArtifact represents a compiled contract artifact
type ContractArtifact struct {
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
}

// GetFactoryArtifact returns the CMTATFactory contract artifact
func GetFactoryArtifact() (*ContractArtifact, error) {
	var artifact ContractArtifact
	if err := json.Unmarshal(factoryJSON, &artifact); err != nil {
		return nil, fmt.Errorf("failed to unmarshal CMTATFactory artifact: %w", err)
	}
	return &artifact, nil
}

// FactoryABI parses the embedded factory ABI.
func FactoryABI() (abi.ABI, error) {
	artifact, err := GetFactoryArtifact()
	if err != nil {
		return abi.ABI{}, err
	}
	parsed, err := abi.JSON(strings.NewReader(string(artifact.ABI)))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to parse CMTATFactory ABI: %w", err)
	}
	return parsed, nil
}

// Factory is a bound handle on an on-chain factory. A handle is owned by a
// single run and is not safe to share between concurrent runs.
type Factory interface {
	Address() common.Address
	// Build submits the build transaction. It does not wait for inclusion.
	Build(opts *bind.TransactOpts, req models.DeploymentRequest) (*types.Transaction, error)
	// GetAddress is a read-only lookup of the address derived for id.
	GetAddress(opts *bind.CallOpts, id *big.Int) (common.Address, error)
	// BuildInputs describes the build parameters in wire order.
	BuildInputs() abi.Arguments
}

type cmtatFactory struct {
	address  common.Address
	abi      abi.ABI
	contract *bind.BoundContract
}

// NewCMTATFactory binds the factory deployed at address.
func NewCMTATFactory(address common.Address, backend bind.ContractBackend) (Factory, error) {
	parsed, err := FactoryABI()
	if err != nil {
		return nil, err
	}
	for _, method := range []string{BuildMethod, GetAddressMethod} {
		if _, ok := parsed.Methods[method]; !ok {
			return nil, fmt.Errorf("factory ABI is missing %s", method)
		}
	}

	return &cmtatFactory{
		address:  address,
		abi:      parsed,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

func (f *cmtatFactory) Address() common.Address {
	return f.address
}

func (f *cmtatFactory) Build(opts *bind.TransactOpts, req models.DeploymentRequest) (*types.Transaction, error) {
	if req.DeploymentID == nil {
		return nil, fmt.Errorf("deployment id is required")
	}
	return f.contract.Transact(opts, BuildMethod, req.BuildArgs()...)
}

func (f *cmtatFactory) GetAddress(opts *bind.CallOpts, id *big.Int) (common.Address, error) {
	var out []interface{}
	if err := f.contract.Call(opts, &out, GetAddressMethod, id); err != nil {
		return common.Address{}, err
	}
	if len(out) != 1 {
		return common.Address{}, fmt.Errorf("unexpected %s output length %d", GetAddressMethod, len(out))
	}

	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected %s output type %T", GetAddressMethod, out[0])
	}
	return addr, nil
}

func (f *cmtatFactory) BuildInputs() abi.Arguments {
	return f.abi.Methods[BuildMethod].Inputs
}

// EncodeArguments ABI-encodes args against inputs without a method
// selector. Explorers expect constructor arguments in this form.
func EncodeArguments(inputs abi.Arguments, args []any) ([]byte, error) {
	if len(args) != len(inputs) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(inputs), len(args))
	}
	encoded, err := inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode arguments: %w", err)
	}
	return encoded, nil
}
