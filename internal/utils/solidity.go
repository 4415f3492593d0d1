package utils

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/rxtech-lab/solc-go"
)

const sourceName = "contract.sol"

// CompiledContract is one contract from a compilation, ready for
// bind.DeployContract.
type CompiledContract struct {
	Name     string
	ABI      abi.ABI
	Bytecode []byte
}

// CompileSolidity compiles a single self-contained source file and returns
// its contracts keyed by name. Imports are not resolved.
func CompileSolidity(version string, code string) (map[string]CompiledContract, error) {
	compiler, err := solc.NewWithVersion(version)
	if err != nil {
		return nil, fmt.Errorf("failed to load solc %s: %w", version, err)
	}

	opts := solc.CompileOptions{
		ImportCallback: func(u string) solc.ImportResult {
			return solc.ImportResult{
				Error: fmt.Sprintf("Import %s not found", u),
			}
		},
	}
	result, err := compiler.CompileWithOptions(&solc.Input{
		Language: "Solidity",
		Sources: map[string]solc.SourceIn{
			sourceName: {Content: code},
		},
		Settings: solc.Settings{
			OutputSelection: map[string]map[string][]string{
				"*": {"*": []string{"abi", "evm.bytecode"}},
			},
		},
	}, &opts)
	if err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("compilation errors: %v", result.Errors)
	}

	contracts := make(map[string]CompiledContract)
	for name, contract := range result.Contracts[sourceName] {
		abiJSON, err := json.Marshal(contract.ABI)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s ABI: %w", name, err)
		}
		parsed, err := abi.JSON(strings.NewReader(string(abiJSON)))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s ABI: %w", name, err)
		}
		bytecode, err := hex.DecodeString(strings.TrimPrefix(contract.EVM.Bytecode.Object, "0x"))
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s bytecode: %w", name, err)
		}
		contracts[name] = CompiledContract{Name: name, ABI: parsed, Bytecode: bytecode}
	}
	return contracts, nil
}
