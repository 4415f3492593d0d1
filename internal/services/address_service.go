package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/factory-launchpad/internal/contracts"
	"github.com/rxtech-lab/factory-launchpad/internal/metrics"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
	"go.uber.org/zap"
)

// AddressService resolves the deterministic address of a built entity.
type AddressService interface {
	// Resolve returns an AddressNotFound error instead of the sentinel address.
	Resolve(ctx context.Context, factory contracts.Factory, id *big.Int) (common.Address, error)
}

type addressService struct {
	logger *zap.Logger
}

// NewAddressService creates a new AddressService
func NewAddressService(logger *zap.Logger) AddressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &addressService{logger: logger}
}

func (s *addressService) Resolve(ctx context.Context, factory contracts.Factory, id *big.Int) (common.Address, error) {
	if id == nil {
		return common.Address{}, models.NewDeploymentError(models.ErrorKindConfiguration, contracts.GetAddressMethod, fmt.Errorf("deployment id is required"))
	}

	addr, err := factory.GetAddress(&bind.CallOpts{Context: ctx}, id)
	if err != nil {
		metrics.AddressLookups.WithLabelValues("error").Inc()
		return common.Address{}, models.NewDeploymentError(models.ErrorKindAddressNotFound, contracts.GetAddressMethod, err)
	}
	if addr == contracts.SentinelAddress {
		metrics.AddressLookups.WithLabelValues("not_found").Inc()
		s.logger.Warn("no entity for deployment id", zap.Stringer("deployment_id", id))
		return common.Address{}, models.NewDeploymentError(models.ErrorKindAddressNotFound, contracts.GetAddressMethod,
			fmt.Errorf("%w for id %s", models.ErrAddressNotFound, id))
	}

	metrics.AddressLookups.WithLabelValues("found").Inc()
	s.logger.Info("entity address resolved", zap.Stringer("deployment_id", id), zap.String("address", addr.Hex()))
	return addr, nil
}
