package config

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
	"github.com/rxtech-lab/factory-launchpad/internal/utils"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// An accidental zero address on-chain is usually irreversible.
	_ = v.RegisterValidation("nonzero_addr", func(fl validator.FieldLevel) bool {
		return !utils.IsZeroAddress(fl.Field().String())
	})
	_ = v.RegisterValidation("bytes32_hex", func(fl validator.FieldLevel) bool {
		_, err := parseBytes32(fl.Field().String())
		return err == nil
	})
	return v
}

// EntityConfig is the raw, unvalidated form of a DeploymentRequest. Every
// address must be given explicitly; none has a default.
type EntityConfig struct {
	Owner           string      `env:"OWNER" json:"owner" validate:"required,eth_addr,nonzero_addr"`
	RelayAddress    string      `env:"RELAY_ADDRESS" json:"relay_address" validate:"required,eth_addr,nonzero_addr"`
	Name            string      `env:"NAME" json:"name" validate:"required"`
	Symbol          string      `env:"SYMBOL" json:"symbol" validate:"required"`
	TokenID         string      `env:"TOKEN_ID" json:"token_id"`
	TermsURI        string      `env:"TERMS_URI" json:"terms_uri"`
	TermsHash       string      `env:"TERMS_HASH" json:"terms_hash" validate:"required,bytes32_hex"`
	IsRestricted    bool        `env:"IS_RESTRICTED" json:"is_restricted"`
	RegistryAddress string      `env:"REGISTRY_ADDRESS" json:"registry_address" validate:"required,eth_addr,nonzero_addr"`
	OperatorAddress string      `env:"OPERATOR_ADDRESS" json:"operator_address" validate:"required,eth_addr,nonzero_addr"`
	UseRuleEngine   bool        `env:"USE_RULE_ENGINE" json:"use_rule_engine"`
	Guardians       []string    `env:"GUARDIANS" envSeparator:"," json:"guardians" validate:"dive,eth_addr,nonzero_addr"`
	DeploymentID    json.Number `env:"DEPLOYMENT_ID" json:"deployment_id" validate:"required"`
}

// Resolve validates the raw fields and converts them to a DeploymentRequest.
func (e EntityConfig) Resolve() (models.DeploymentRequest, error) {
	if err := validate.Struct(e); err != nil {
		return models.DeploymentRequest{}, configError("validate request", err)
	}

	termsHash, err := parseBytes32(e.TermsHash)
	if err != nil {
		return models.DeploymentRequest{}, configError("terms hash", err)
	}

	id, err := ParseDeploymentID(e.DeploymentID.String())
	if err != nil {
		return models.DeploymentRequest{}, configError("deployment id", err)
	}

	guardians := make([]common.Address, 0, len(e.Guardians))
	for _, g := range e.Guardians {
		guardians = append(guardians, common.HexToAddress(strings.TrimSpace(g)))
	}

	return models.DeploymentRequest{
		Owner:           common.HexToAddress(e.Owner),
		RelayAddress:    common.HexToAddress(e.RelayAddress),
		Name:            e.Name,
		Symbol:          e.Symbol,
		TokenID:         e.TokenID,
		TermsURI:        e.TermsURI,
		TermsHash:       termsHash,
		IsRestricted:    e.IsRestricted,
		RegistryAddress: common.HexToAddress(e.RegistryAddress),
		OperatorAddress: common.HexToAddress(e.OperatorAddress),
		UseRuleEngine:   e.UseRuleEngine,
		Guardians:       guardians,
		DeploymentID:    id,
	}, nil
}

// ParseDeploymentID parses a non-negative decimal id that fits in uint256.
func ParseDeploymentID(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("deployment id is required")
	}
	id, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid deployment id %q", s)
	}
	if id.Sign() < 0 || id.BitLen() > 256 {
		return nil, fmt.Errorf("deployment id %s is out of uint256 range", s)
	}
	return id, nil
}

func parseBytes32(s string) (common.Hash, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(raw) != 64 {
		return common.Hash{}, fmt.Errorf("expected 32 bytes of hex, got %d characters", len(raw))
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid hex: %w", err)
	}
	return common.BytesToHash(b), nil
}
