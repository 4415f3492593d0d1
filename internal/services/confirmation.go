package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
)

const DefaultPollInterval = 2 * time.Second

// WaitForConfirmations blocks until txHash is included and the chain head is
// confirmations blocks past the inclusion block. Zero means inclusion only.
//
// There is no internal timeout: the wait ends only when ctx does. A reverted
// receipt returns the receipt together with models.ErrReverted.
func WaitForConfirmations(ctx context.Context, backend ReceiptReader, txHash common.Hash, confirmations uint64, pollInterval time.Duration) (*types.Receipt, error) {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var receipt *types.Receipt
	for {
		if receipt == nil {
			r, err := backend.TransactionReceipt(ctx, txHash)
			switch {
			case err == nil:
				if r.Status != types.ReceiptStatusSuccessful {
					return r, fmt.Errorf("%w in block %d", models.ErrReverted, r.BlockNumber.Uint64())
				}
				receipt = r
			case errors.Is(err, ethereum.NotFound):
				// still pending
			default:
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, fmt.Errorf("failed to get receipt: %w", err)
			}
		}

		if receipt != nil {
			head, err := backend.BlockNumber(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return receipt, ctx.Err()
				}
				return receipt, fmt.Errorf("failed to get block number: %w", err)
			}
			if head >= receipt.BlockNumber.Uint64()+confirmations {
				return receipt, nil
			}
		}

		select {
		case <-ctx.Done():
			return receipt, ctx.Err()
		case <-ticker.C:
		}
	}
}
