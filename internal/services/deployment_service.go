package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/rxtech-lab/factory-launchpad/internal/contracts"
	"github.com/rxtech-lab/factory-launchpad/internal/metrics"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
	"go.uber.org/zap"
)

// DeploymentService submits factory build calls and waits for them to settle.
type DeploymentService interface {
	// Deploy never returns an error: every failure is captured in the result.
	Deploy(ctx context.Context, factory contracts.Factory, req models.DeploymentRequest) models.DeploymentResult
}

type DeploymentOption func(*deploymentService)

// WithConfirmations sets how many blocks past inclusion to wait for.
func WithConfirmations(n uint64) DeploymentOption {
	return func(s *deploymentService) {
		s.confirmations = n
	}
}

func WithPollInterval(d time.Duration) DeploymentOption {
	return func(s *deploymentService) {
		s.pollInterval = d
	}
}

type deploymentService struct {
	session       *ChainSession
	confirmations uint64
	pollInterval  time.Duration
	logger        *zap.Logger
}

// NewDeploymentService creates a new DeploymentService
func NewDeploymentService(session *ChainSession, logger *zap.Logger, opts ...DeploymentOption) DeploymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &deploymentService{
		session:       session,
		confirmations: 1,
		pollInterval:  DefaultPollInterval,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Deploy submits one build call and waits for it to reach the configured
// depth. The result is partial whenever a transaction hash was obtained but
// the run did not confirm.
func (s *deploymentService) Deploy(ctx context.Context, factory contracts.Factory, req models.DeploymentRequest) (result models.DeploymentResult) {
	result = models.DeploymentResult{State: models.DeploymentStateIdle}
	if req.DeploymentID != nil {
		result.DeploymentID = new(big.Int).Set(req.DeploymentID)
	}
	log := s.logger.With(
		zap.String("factory", factory.Address().Hex()),
		zap.Stringer("deployment_id", req.DeploymentID),
	)

	defer func() {
		if r := recover(); r != nil {
			s.fail(&result, models.ErrorKindSubmission, "build", fmt.Errorf("panic: %v", r))
		}
		if result.Err != nil {
			metrics.BuildsFailed.WithLabelValues(string(result.Err.Kind), strconv.FormatBool(result.Partial)).Inc()
			log.Error("build failed",
				zap.String("kind", string(result.Err.Kind)),
				zap.Bool("partial", result.Partial),
				zap.Stringer("tx_hash", result.TransactionHash),
				zap.Error(result.Err.Err),
			)
		}
	}()

	opts, err := s.session.TransactOpts(ctx)
	if err != nil {
		s.fail(&result, models.ErrorKindSubmission, "transact opts", err)
		return result
	}

	tx, err := factory.Build(opts, req)
	if err != nil {
		s.fail(&result, models.ErrorKindSubmission, contracts.BuildMethod, err)
		return result
	}
	result.TransactionHash = tx.Hash()
	result.State = models.DeploymentStateSubmitted
	log.Info("build submitted", zap.Stringer("tx_hash", result.TransactionHash), zap.Uint64("nonce", tx.Nonce()))

	started := time.Now()
	receipt, err := WaitForConfirmations(ctx, s.session.Backend(), result.TransactionHash, s.confirmations, s.pollInterval)
	metrics.ConfirmationWait.Observe(time.Since(started).Seconds())
	if receipt != nil {
		result.BlockNumber = receipt.BlockNumber.Uint64()
	}
	if err != nil {
		kind := models.ErrorKindConfirmationTimeout
		if errors.Is(err, models.ErrReverted) {
			kind = models.ErrorKindSubmission
		}
		s.fail(&result, kind, "wait", err)
		return result
	}

	result.State = models.DeploymentStateConfirmed
	log.Info("build confirmed",
		zap.Stringer("tx_hash", result.TransactionHash),
		zap.Uint64("block", result.BlockNumber),
		zap.Uint64("confirmations", s.confirmations),
	)
	return result
}

func (s *deploymentService) fail(result *models.DeploymentResult, kind models.ErrorKind, op string, err error) {
	result.State = models.DeploymentStateFailed
	result.Partial = result.HasTransaction()
	result.Err = models.NewDeploymentError(kind, op, err)
}
