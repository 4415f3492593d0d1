package services

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rxtech-lab/factory-launchpad/internal/contracts"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
)

// fakeBackend serves receipts and the chain head from memory. Contract calls
// go through the embedded interface and are never made by these tests.
type fakeBackend struct {
	bind.ContractBackend

	mu           sync.Mutex
	chainID      *big.Int
	receipts     map[common.Hash]*types.Receipt
	head         uint64
	advanceHead  bool
	receiptErr   error
	blockErr     error
	receiptCalls int
	blockCalls   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		chainID:  big.NewInt(280),
		receipts: make(map[common.Hash]*types.Receipt),
	}
}

func (b *fakeBackend) ChainID(ctx context.Context) (*big.Int, error) {
	return b.chainID, nil
}

func (b *fakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.receiptCalls++
	if b.receiptErr != nil {
		return nil, b.receiptErr
	}
	receipt, ok := b.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func (b *fakeBackend) BlockNumber(ctx context.Context) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blockCalls++
	if b.blockErr != nil {
		return 0, b.blockErr
	}
	head := b.head
	if b.advanceHead {
		b.head++
	}
	return head, nil
}

func (b *fakeBackend) include(txHash common.Hash, block uint64, status uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.receipts[txHash] = &types.Receipt{
		Status:      status,
		TxHash:      txHash,
		BlockNumber: new(big.Int).SetUint64(block),
	}
}

// fakeFactory records build calls and answers lookups from a map.
type fakeFactory struct {
	address   common.Address
	tx        *types.Transaction
	buildErr  error
	panicMsg  string
	lookupErr error
	entities  map[string]common.Address

	builds   int
	lastOpts *bind.TransactOpts
	lastReq  models.DeploymentRequest
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{
		address:  common.HexToAddress("0x5454605539E81ecfD30085Eba7ebBe80cB66eEA8"),
		tx:       types.NewTx(&types.LegacyTx{Nonce: 7, Gas: 21000, GasPrice: big.NewInt(1)}),
		entities: make(map[string]common.Address),
	}
}

func (f *fakeFactory) Address() common.Address {
	return f.address
}

func (f *fakeFactory) Build(opts *bind.TransactOpts, req models.DeploymentRequest) (*types.Transaction, error) {
	f.builds++
	f.lastOpts = opts
	f.lastReq = req
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	return f.tx, nil
}

func (f *fakeFactory) GetAddress(opts *bind.CallOpts, id *big.Int) (common.Address, error) {
	if f.lookupErr != nil {
		return common.Address{}, f.lookupErr
	}
	return f.entities[id.String()], nil
}

func (f *fakeFactory) BuildInputs() abi.Arguments {
	parsed, err := contracts.FactoryABI()
	if err != nil {
		panic(err)
	}
	return parsed.Methods[contracts.BuildMethod].Inputs
}
