// Package workflow chains build, confirmation, address resolution and
// verification into one run that always ends in a DeploymentResult.
package workflow

import (
	"context"
	"errors"
	"math/big"

	"github.com/google/uuid"
	"github.com/rxtech-lab/factory-launchpad/internal/contracts"
	"github.com/rxtech-lab/factory-launchpad/internal/metrics"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
	"github.com/rxtech-lab/factory-launchpad/internal/services"
	"go.uber.org/zap"
)

type RunOptions struct {
	Factory contracts.Factory
	Request models.DeploymentRequest
	// SkipBuild resolves the address of an already built id.
	SkipBuild bool
	// Verify submits the resolved entity for verification. It is ignored when
	// the runner has no verifier.
	Verify     bool
	EntityType models.EntityType
}

// Runner executes workflow runs. A Runner may be reused, but runs that share
// a signing key must not overlap.
type Runner struct {
	deployments services.DeploymentService
	addresses   services.AddressService
	verifier    services.VerificationService
	logger      *zap.Logger
}

// NewRunner creates a runner. verifier may be nil.
func NewRunner(deployments services.DeploymentService, addresses services.AddressService, verifier services.VerificationService, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		deployments: deployments,
		addresses:   addresses,
		verifier:    verifier,
		logger:      logger,
	}
}

// Run builds the entity, resolves its address and optionally verifies it.
// A failed stage is captured in the result; configuration and submission
// failures stop the run before address resolution.
func (r *Runner) Run(ctx context.Context, opts RunOptions) models.DeploymentResult {
	runID := uuid.NewString()
	log := r.logger.With(zap.String("run_id", runID), zap.Stringer("deployment_id", opts.Request.DeploymentID))

	result := r.run(ctx, opts, log)
	result.RunID = runID

	outcome := outcomeOf(result)
	metrics.RunsTotal.WithLabelValues(outcome).Inc()
	log.Info("run finished",
		zap.String("outcome", outcome),
		zap.String("state", string(result.State)),
		zap.String("address", result.Address.Hex()),
		zap.Bool("partial", result.Partial),
	)
	return result
}

func (r *Runner) run(ctx context.Context, opts RunOptions, log *zap.Logger) models.DeploymentResult {
	result := models.DeploymentResult{State: models.DeploymentStateIdle}
	if opts.Request.DeploymentID != nil {
		result.DeploymentID = new(big.Int).Set(opts.Request.DeploymentID)
	}
	if opts.Factory == nil {
		result.State = models.DeploymentStateFailed
		result.Err = models.NewDeploymentError(models.ErrorKindConfiguration, "run", errors.New("factory is required"))
		return result
	}
	if opts.Request.DeploymentID == nil {
		result.State = models.DeploymentStateFailed
		result.Err = models.NewDeploymentError(models.ErrorKindConfiguration, "run", errors.New("deployment id is required"))
		return result
	}

	if !opts.SkipBuild {
		result = r.deployments.Deploy(ctx, opts.Factory, opts.Request)
		if result.Err != nil {
			switch result.Err.Kind {
			case models.ErrorKindConfiguration, models.ErrorKindSubmission:
				return result
			}
			// The build may still land. Resolution is only attempted while
			// the caller's context is alive.
			if ctx.Err() != nil {
				return result
			}
			log.Warn("build unconfirmed, resolving address anyway", zap.Error(result.Err))
		}
	}

	addr, err := r.addresses.Resolve(ctx, opts.Factory, opts.Request.DeploymentID)
	if err != nil {
		if result.Err == nil {
			result.Err = asDeploymentError(err, models.ErrorKindAddressNotFound)
			result.Partial = result.HasTransaction()
			if result.State == models.DeploymentStateConfirmed {
				// built and confirmed but the factory does not know the id
				log.Warn("confirmed build has no address", zap.Error(err))
			}
		}
		return result
	}
	result.Address = addr

	if opts.Verify && r.verifier != nil {
		r.verify(ctx, opts, &result, log)
	}
	return result
}

func (r *Runner) verify(ctx context.Context, opts RunOptions, result *models.DeploymentResult, log *zap.Logger) {
	entityType := opts.EntityType
	if entityType == "" {
		entityType = models.EntityTypeCMTAT
	}

	req := services.VerificationRequest{
		Address:    result.Address,
		EntityType: entityType,
	}
	if entityType == models.EntityTypeCMTAT {
		req.ArgumentTypes = opts.Factory.BuildInputs()
		req.ConstructorArgs = opts.Request.BuildArgs()
	}

	id, err := r.verifier.Verify(ctx, req)
	if err != nil {
		result.VerificationErr = asDeploymentError(err, models.ErrorKindVerification)
		log.Warn("verification failed", zap.Error(err))
		return
	}
	result.VerificationID = id
}

func outcomeOf(result models.DeploymentResult) string {
	switch {
	case result.Succeeded():
		return "success"
	case result.Partial:
		return "partial"
	default:
		return "failed"
	}
}

func asDeploymentError(err error, fallback models.ErrorKind) *models.DeploymentError {
	var de *models.DeploymentError
	if errors.As(err, &de) {
		return de
	}
	return models.NewDeploymentError(fallback, "", err)
}
