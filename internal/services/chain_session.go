package services

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ChainBackend is the slice of an RPC client the workflow needs.
// *ethclient.Client and the simulated backend client both satisfy it.
type ChainBackend interface {
	bind.ContractBackend
	ReceiptReader
	ChainID(ctx context.Context) (*big.Int, error)
}

// ReceiptReader is what the confirmation wait polls.
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// ChainSession is a provider plus a signing identity, scoped to one run.
// Nonces are not coordinated, so a session must not be shared by concurrent
// runs without external serialization.
type ChainSession struct {
	backend  ChainBackend
	key      *ecdsa.PrivateKey
	from     common.Address
	chainID  *big.Int
	gasLimit uint64
	closer   func()
}

// NewChainSession binds a signing key to an existing backend.
func NewChainSession(ctx context.Context, backend ChainBackend, key *ecdsa.PrivateKey) (*ChainSession, error) {
	if key == nil {
		return nil, fmt.Errorf("signing key is required")
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}

	return &ChainSession{
		backend: backend,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
	}, nil
}

// DialChainSession connects to rpcURL and binds key to the connection.
func DialChainSession(ctx context.Context, rpcURL string, key *ecdsa.PrivateKey) (*ChainSession, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc: %w", err)
	}

	session, err := NewChainSession(ctx, client, key)
	if err != nil {
		client.Close()
		return nil, err
	}
	session.closer = client.Close
	return session, nil
}

func (s *ChainSession) Backend() ChainBackend {
	return s.backend
}

// From returns the signer's address.
func (s *ChainSession) From() common.Address {
	return s.from
}

func (s *ChainSession) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// SetGasLimit fixes the gas limit of submitted transactions. Zero means
// estimate per transaction.
func (s *ChainSession) SetGasLimit(gasLimit uint64) {
	s.gasLimit = gasLimit
}

// TransactOpts returns fresh signing options bound to ctx.
func (s *ChainSession) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.key, s.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	opts.GasLimit = s.gasLimit
	return opts, nil
}

func (s *ChainSession) CallOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx, From: s.from}
}

// Close releases the underlying connection if the session dialed it.
func (s *ChainSession) Close() {
	if s.closer != nil {
		s.closer()
	}
}
