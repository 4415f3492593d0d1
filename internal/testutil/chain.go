// Package testutil runs the factory workflow against an in-process EVM.
package testutil

import (
	"context"
	"crypto/ecdsa"
	_ "embed"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/rxtech-lab/factory-launchpad/internal/utils"
	"github.com/stretchr/testify/require"
)

//go:embed MockCMTATFactory.sol
var mockFactorySource string

const (
	MockFactoryName = "MockCMTATFactory"
	solcVersion     = "0.8.19"
	// Anvil account #0; any funded key works on the simulated chain.
	DeployerPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

// SimulatedChain wraps a simulated backend with a funded deployer account.
type SimulatedChain struct {
	Backend *simulated.Backend
	Client  simulated.Client
	Key     *ecdsa.PrivateKey
	Address common.Address
	ChainID *big.Int
	t       testing.TB
}

// FactoryDeployment holds a deployed mock factory.
type FactoryDeployment struct {
	Address common.Address
	ABI     abi.ABI
}

func NewSimulatedChain(t testing.TB) *SimulatedChain {
	key, err := crypto.HexToECDSA(DeployerPrivateKey)
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey)

	balance, ok := new(big.Int).SetString("1000000000000000000000", 10)
	require.True(t, ok)

	backend := simulated.NewBackend(types.GenesisAlloc{
		address: {Balance: balance},
	})
	t.Cleanup(func() {
		backend.Close()
	})

	client := backend.Client()
	chainID, err := client.ChainID(context.Background())
	require.NoError(t, err)

	return &SimulatedChain{
		Backend: backend,
		Client:  client,
		Key:     key,
		Address: address,
		ChainID: chainID,
		t:       t,
	}
}

// TransactOpts returns signing options for the deployer account.
func (c *SimulatedChain) TransactOpts() *bind.TransactOpts {
	auth, err := bind.NewKeyedTransactorWithChainID(c.Key, c.ChainID)
	require.NoError(c.t, err)
	return auth
}

// DeployMockFactory compiles and deploys the mock factory. The test is
// skipped when the Solidity compiler cannot be loaded.
func (c *SimulatedChain) DeployMockFactory() FactoryDeployment {
	compiled, err := utils.CompileSolidity(solcVersion, mockFactorySource)
	if err != nil {
		c.t.Skipf("solidity compiler unavailable: %v", err)
	}

	factory, ok := compiled[MockFactoryName]
	require.True(c.t, ok, "contract %s not found in compilation result", MockFactoryName)
	parsedABI := factory.ABI

	address, tx, _, err := bind.DeployContract(c.TransactOpts(), parsedABI, factory.Bytecode, c.Client)
	require.NoError(c.t, err)
	c.Backend.Commit()

	receipt, err := c.Client.TransactionReceipt(context.Background(), tx.Hash())
	require.NoError(c.t, err)
	require.Equal(c.t, types.ReceiptStatusSuccessful, receipt.Status)

	return FactoryDeployment{Address: address, ABI: parsedABI}
}

// AutoMine commits a block every interval until the returned stop func is
// called. Stopping twice is a no-op. It stands in for block production while a run waits for
// confirmations.
func (c *SimulatedChain) AutoMine(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				c.Backend.Commit()
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-finished
		})
	}
}

// OwnerOf reads the owner the mock factory recorded for id.
func (c *SimulatedChain) OwnerOf(factory FactoryDeployment, id *big.Int) common.Address {
	contract := bind.NewBoundContract(factory.Address, factory.ABI, c.Client, c.Client, c.Client)
	var out []interface{}
	require.NoError(c.t, contract.Call(&bind.CallOpts{}, &out, "ownerOf", id))
	require.Len(c.t, out, 1)
	owner, ok := out[0].(common.Address)
	require.True(c.t, ok)
	return owner
}
