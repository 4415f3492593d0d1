package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rxtech-lab/factory-launchpad/internal/contracts"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
	"github.com/rxtech-lab/factory-launchpad/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type DeploymentServiceTestSuite struct {
	suite.Suite
	backend *fakeBackend
	factory *fakeFactory
	session *ChainSession
	service DeploymentService
}

func (s *DeploymentServiceTestSuite) SetupTest() {
	key, err := crypto.HexToECDSA(testutil.DeployerPrivateKey)
	s.Require().NoError(err)

	s.backend = newFakeBackend()
	s.factory = newFakeFactory()
	s.session, err = NewChainSession(context.Background(), s.backend, key)
	s.Require().NoError(err)
	s.service = NewDeploymentService(s.session, nil, WithConfirmations(1), WithPollInterval(time.Millisecond))
}

func (s *DeploymentServiceTestSuite) TestConfirmed() {
	s.backend.include(s.factory.tx.Hash(), 42, types.ReceiptStatusSuccessful)
	s.backend.head = 43
	req := testutil.SampleRequest(8029)

	result := s.service.Deploy(context.Background(), s.factory, req)

	s.Nil(result.Err)
	s.Equal(models.DeploymentStateConfirmed, result.State)
	s.False(result.Partial)
	s.Equal(s.factory.tx.Hash(), result.TransactionHash)
	s.Equal(uint64(42), result.BlockNumber)
	s.Equal("8029", result.DeploymentID.String())
	s.Equal(1, s.factory.builds)
	s.Equal(req.Owner, s.factory.lastReq.Owner)
	s.Equal(s.session.From(), s.factory.lastOpts.From)
}

func (s *DeploymentServiceTestSuite) TestSubmissionRejected() {
	s.factory.buildErr = errors.New("execution reverted: CMTATFactory: id already used")

	result := s.service.Deploy(context.Background(), s.factory, testutil.SampleRequest(8029))

	s.Require().NotNil(result.Err)
	s.Equal(models.ErrorKindSubmission, result.Err.Kind)
	s.Equal(models.DeploymentStateFailed, result.State)
	s.False(result.Partial)
	s.False(result.HasTransaction())
	s.Contains(result.Err.Error(), "id already used")
}

func (s *DeploymentServiceTestSuite) TestConfirmationTimeoutIsPartial() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	result := s.service.Deploy(ctx, s.factory, testutil.SampleRequest(8029))

	s.Require().NotNil(result.Err)
	s.Equal(models.ErrorKindConfirmationTimeout, result.Err.Kind)
	s.True(result.Partial)
	s.Equal(s.factory.tx.Hash(), result.TransactionHash)
	s.ErrorIs(result.Err, context.DeadlineExceeded)
}

func (s *DeploymentServiceTestSuite) TestRevertedIsPartialSubmission() {
	s.backend.include(s.factory.tx.Hash(), 42, types.ReceiptStatusFailed)
	s.backend.head = 50

	result := s.service.Deploy(context.Background(), s.factory, testutil.SampleRequest(8029))

	s.Require().NotNil(result.Err)
	s.Equal(models.ErrorKindSubmission, result.Err.Kind)
	s.ErrorIs(result.Err, models.ErrReverted)
	s.True(result.Partial)
	s.Equal(uint64(42), result.BlockNumber)
}

func (s *DeploymentServiceTestSuite) TestPanicIsCaptured() {
	s.factory.panicMsg = "boom"

	var result models.DeploymentResult
	s.NotPanics(func() {
		result = s.service.Deploy(context.Background(), s.factory, testutil.SampleRequest(1))
	})
	s.Require().NotNil(result.Err)
	s.Equal(models.ErrorKindSubmission, result.Err.Kind)
	s.Contains(result.Err.Error(), "boom")
	s.False(result.Partial)
}

func (s *DeploymentServiceTestSuite) TestGasLimitApplied() {
	s.session.SetGasLimit(5_000_000)
	s.backend.include(s.factory.tx.Hash(), 1, types.ReceiptStatusSuccessful)
	s.backend.head = 2

	result := s.service.Deploy(context.Background(), s.factory, testutil.SampleRequest(1))

	s.Nil(result.Err)
	s.Equal(uint64(5_000_000), s.factory.lastOpts.GasLimit)
}

func (s *DeploymentServiceTestSuite) TestEachCallIsIndependent() {
	s.factory.buildErr = errors.New("nonce too low")
	first := s.service.Deploy(context.Background(), s.factory, testutil.SampleRequest(1))
	s.Require().NotNil(first.Err)

	s.factory.buildErr = nil
	s.backend.include(s.factory.tx.Hash(), 1, types.ReceiptStatusSuccessful)
	s.backend.head = 2
	second := s.service.Deploy(context.Background(), s.factory, testutil.SampleRequest(2))

	s.Nil(second.Err)
	s.Equal(models.DeploymentStateConfirmed, second.State)
	s.Equal(2, s.factory.builds)
}

func TestDeploymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DeploymentServiceTestSuite))
}

func TestDeployOnSimulatedChain(t *testing.T) {
	chain := testutil.NewSimulatedChain(t)
	factoryDeployment := chain.DeployMockFactory()

	ctx := context.Background()
	session, err := NewChainSession(ctx, chain.Client, chain.Key)
	require.NoError(t, err)
	factory, err := contracts.NewCMTATFactory(factoryDeployment.Address, chain.Client)
	require.NoError(t, err)

	stop := chain.AutoMine(10 * time.Millisecond)
	defer stop()

	service := NewDeploymentService(session, nil, WithConfirmations(2), WithPollInterval(5*time.Millisecond))
	addresses := NewAddressService(nil)

	t.Run("BuildAndResolve", func(t *testing.T) {
		req := testutil.SampleRequest(8029)
		result := service.Deploy(ctx, factory, req)
		require.Nil(t, result.Err)
		assert.Equal(t, models.DeploymentStateConfirmed, result.State)
		assert.False(t, result.Partial)

		head, err := chain.Client.BlockNumber(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, head, result.BlockNumber+2)

		addr, err := addresses.Resolve(ctx, factory, req.DeploymentID)
		require.NoError(t, err)
		assert.NotEqual(t, common.Address{}, addr)
		assert.Equal(t, req.Owner, chain.OwnerOf(factoryDeployment, req.DeploymentID))
	})

	t.Run("DuplicateIDRejected", func(t *testing.T) {
		result := service.Deploy(ctx, factory, testutil.SampleRequest(8029))
		require.NotNil(t, result.Err)
		assert.Equal(t, models.ErrorKindSubmission, result.Err.Kind)
	})

	t.Run("UnusedIDNotFound", func(t *testing.T) {
		_, err := addresses.Resolve(ctx, factory, testutil.SampleRequest(0).DeploymentID)
		assert.True(t, models.IsKind(err, models.ErrorKindAddressNotFound))
		assert.ErrorIs(t, err, models.ErrAddressNotFound)
	})
}
