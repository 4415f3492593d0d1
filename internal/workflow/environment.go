package workflow

import (
	"context"

	"github.com/rxtech-lab/factory-launchpad/internal/config"
	"github.com/rxtech-lab/factory-launchpad/internal/contracts"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
	"github.com/rxtech-lab/factory-launchpad/internal/services"
	"go.uber.org/zap"
)

// Environment holds everything wired from one Config.
type Environment struct {
	Config   *config.Config
	Session  *services.ChainSession
	Factory  contracts.Factory
	Verifier *services.ZkSyncVerifier
	Runner   *Runner
}

// Setup dials the configured RPC endpoint and wires the services.
func Setup(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Environment, error) {
	key, err := cfg.SigningKey()
	if err != nil {
		return nil, err
	}

	session, err := services.DialChainSession(ctx, cfg.RPCURL, key)
	if err != nil {
		return nil, models.NewDeploymentError(models.ErrorKindConfiguration, "dial", err)
	}

	env, err := newEnvironment(cfg, session, logger)
	if err != nil {
		session.Close()
		return nil, err
	}
	return env, nil
}

// NewEnvironment wires the services over an existing backend.
func NewEnvironment(ctx context.Context, cfg *config.Config, backend services.ChainBackend, logger *zap.Logger) (*Environment, error) {
	key, err := cfg.SigningKey()
	if err != nil {
		return nil, err
	}

	session, err := services.NewChainSession(ctx, backend, key)
	if err != nil {
		return nil, models.NewDeploymentError(models.ErrorKindConfiguration, "session", err)
	}
	return newEnvironment(cfg, session, logger)
}

func newEnvironment(cfg *config.Config, session *services.ChainSession, logger *zap.Logger) (*Environment, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	session.SetGasLimit(cfg.GasLimit)

	factory, err := contracts.NewCMTATFactory(cfg.Factory(), session.Backend())
	if err != nil {
		return nil, models.NewDeploymentError(models.ErrorKindConfiguration, "bind factory", err)
	}

	verifier := services.NewZkSyncVerifier(services.ZkSyncVerifierOptions{
		URL:           cfg.Verify.URL,
		SourceFile:    cfg.Verify.SourceFile,
		ZksolcVersion: cfg.Verify.ZksolcVersion,
		SolcVersion:   cfg.Verify.SolcVersion,
		Optimization:  cfg.Verify.Optimization,
	}, logger.Named("verifier"))

	deployments := services.NewDeploymentService(session, logger.Named("deployments"),
		services.WithConfirmations(cfg.Confirmations),
		services.WithPollInterval(cfg.PollInterval),
	)

	logger.Info("environment ready",
		zap.String("signer", session.From().Hex()),
		zap.Stringer("chain_id", session.ChainID()),
		zap.String("factory", factory.Address().Hex()),
		zap.Uint64("confirmations", cfg.Confirmations),
	)

	return &Environment{
		Config:   cfg,
		Session:  session,
		Factory:  factory,
		Verifier: verifier,
		Runner:   NewRunner(deployments, services.NewAddressService(logger.Named("addresses")), verifier, logger.Named("workflow")),
	}, nil
}

// RunOptions builds options for req using the configured verification defaults.
func (e *Environment) RunOptions(req models.DeploymentRequest, skipBuild bool) RunOptions {
	return RunOptions{
		Factory:    e.Factory,
		Request:    req,
		SkipBuild:  skipBuild,
		Verify:     e.Config.Verify.Enabled,
		EntityType: models.EntityType(e.Config.Verify.EntityType),
	}
}

func (e *Environment) Close() {
	e.Session.Close()
}
