package workflow

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/factory-launchpad/internal/contracts"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
	"github.com/rxtech-lab/factory-launchpad/internal/services"
)

// Launchpad is the surface the HTTP API and MCP tools drive.
type Launchpad interface {
	Build(ctx context.Context, req models.DeploymentRequest, verify bool) models.DeploymentResult
	Resolve(ctx context.Context, id *big.Int) models.DeploymentResult
	Verify(ctx context.Context, address common.Address, entityType models.EntityType, req *models.DeploymentRequest) (string, error)
	VerificationStatus(ctx context.Context, id string) (*services.VerificationStatus, error)
}

type statusChecker interface {
	Status(ctx context.Context, id string) (*services.VerificationStatus, error)
}

type LauncherOptions struct {
	EntityType models.EntityType
}

// Launcher serializes runs that share one signing key. Nonces are not
// coordinated, so overlapping builds from the same key would race.
type Launcher struct {
	mu         sync.Mutex
	runner     *Runner
	factory    contracts.Factory
	verifier   services.VerificationService
	entityType models.EntityType
}

func NewLauncher(runner *Runner, factory contracts.Factory, verifier services.VerificationService, opts LauncherOptions) *Launcher {
	entityType := opts.EntityType
	if entityType == "" {
		entityType = models.EntityTypeCMTAT
	}
	return &Launcher{
		runner:     runner,
		factory:    factory,
		verifier:   verifier,
		entityType: entityType,
	}
}

// Launcher returns a Launcher over the environment's runner and factory.
func (e *Environment) Launcher() *Launcher {
	return NewLauncher(e.Runner, e.Factory, e.Verifier, LauncherOptions{
		EntityType: models.EntityType(e.Config.Verify.EntityType),
	})
}

// Build runs build, wait, resolve and, when verify is set, verification.
func (l *Launcher) Build(ctx context.Context, req models.DeploymentRequest, verify bool) models.DeploymentResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.runner.Run(ctx, RunOptions{
		Factory:    l.factory,
		Request:    req,
		Verify:     verify,
		EntityType: l.entityType,
	})
}

// Resolve looks up the address of an already built id. It does not take the
// build lock since it never signs.
func (l *Launcher) Resolve(ctx context.Context, id *big.Int) models.DeploymentResult {
	return l.runner.Run(ctx, RunOptions{
		Factory:   l.factory,
		Request:   models.DeploymentRequest{DeploymentID: id},
		SkipBuild: true,
	})
}

// Verify submits address for verification. req supplies the CMTAT build
// arguments and may be nil for entity types without any.
func (l *Launcher) Verify(ctx context.Context, address common.Address, entityType models.EntityType, req *models.DeploymentRequest) (string, error) {
	if l.verifier == nil {
		return "", models.NewDeploymentError(models.ErrorKindVerification, "verify", fmt.Errorf("verification is not configured"))
	}
	if entityType == "" {
		entityType = l.entityType
	}

	vr := services.VerificationRequest{Address: address, EntityType: entityType}
	if entityType == models.EntityTypeCMTAT {
		if req == nil || req.DeploymentID == nil {
			return "", models.NewDeploymentError(models.ErrorKindVerification, "verify", fmt.Errorf("build arguments are required to verify %s", entityType))
		}
		vr.ArgumentTypes = l.factory.BuildInputs()
		vr.ConstructorArgs = req.BuildArgs()
	}
	return l.verifier.Verify(ctx, vr)
}

func (l *Launcher) VerificationStatus(ctx context.Context, id string) (*services.VerificationStatus, error) {
	checker, ok := l.verifier.(statusChecker)
	if !ok {
		return nil, models.NewDeploymentError(models.ErrorKindVerification, "status", fmt.Errorf("verification status is not supported"))
	}
	return checker.Status(ctx, id)
}
