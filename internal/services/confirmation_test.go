package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForConfirmations(t *testing.T) {
	txHash := common.HexToHash("0xabc")

	t.Run("ReturnsOnceDepthReached", func(t *testing.T) {
		backend := newFakeBackend()
		backend.include(txHash, 10, types.ReceiptStatusSuccessful)
		backend.head = 11

		receipt, err := WaitForConfirmations(context.Background(), backend, txHash, 1, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, uint64(10), receipt.BlockNumber.Uint64())
		assert.Equal(t, 1, backend.blockCalls)
	})

	t.Run("WaitsForAdditionalBlocks", func(t *testing.T) {
		backend := newFakeBackend()
		backend.include(txHash, 10, types.ReceiptStatusSuccessful)
		backend.head = 10
		backend.advanceHead = true

		_, err := WaitForConfirmations(context.Background(), backend, txHash, 3, time.Millisecond)
		require.NoError(t, err)
		// heads 10, 11, 12, 13
		assert.Equal(t, 4, backend.blockCalls)
		assert.Equal(t, 1, backend.receiptCalls)
	})

	t.Run("ZeroConfirmationsMeansInclusion", func(t *testing.T) {
		backend := newFakeBackend()
		backend.include(txHash, 10, types.ReceiptStatusSuccessful)
		backend.head = 10

		_, err := WaitForConfirmations(context.Background(), backend, txHash, 0, time.Millisecond)
		require.NoError(t, err)
	})

	t.Run("PendingUntilContextDeadline", func(t *testing.T) {
		backend := newFakeBackend()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		receipt, err := WaitForConfirmations(ctx, backend, txHash, 1, time.Millisecond)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Nil(t, receipt)
		assert.Greater(t, backend.receiptCalls, 1)
	})

	t.Run("IncludedButNotDeepEnough", func(t *testing.T) {
		backend := newFakeBackend()
		backend.include(txHash, 10, types.ReceiptStatusSuccessful)
		backend.head = 10
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		receipt, err := WaitForConfirmations(ctx, backend, txHash, 5, time.Millisecond)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		require.NotNil(t, receipt)
		assert.Equal(t, uint64(10), receipt.BlockNumber.Uint64())
	})

	t.Run("Reverted", func(t *testing.T) {
		backend := newFakeBackend()
		backend.include(txHash, 10, types.ReceiptStatusFailed)
		backend.head = 20

		receipt, err := WaitForConfirmations(context.Background(), backend, txHash, 1, time.Millisecond)
		assert.ErrorIs(t, err, models.ErrReverted)
		require.NotNil(t, receipt)
		assert.Equal(t, types.ReceiptStatusFailed, receipt.Status)
	})

	t.Run("ReceiptError", func(t *testing.T) {
		backend := newFakeBackend()
		backend.receiptErr = errors.New("connection refused")

		_, err := WaitForConfirmations(context.Background(), backend, txHash, 1, time.Millisecond)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
		assert.NotErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("BlockNumberError", func(t *testing.T) {
		backend := newFakeBackend()
		backend.include(txHash, 10, types.ReceiptStatusSuccessful)
		backend.blockErr = errors.New("rate limited")

		receipt, err := WaitForConfirmations(context.Background(), backend, txHash, 1, time.Millisecond)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
		assert.NotNil(t, receipt)
	})
}
