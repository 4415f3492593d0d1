package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DeploymentRequest is the full parameter set of one factory build call.
// It is built fresh for every run and never persisted.
type DeploymentRequest struct {
	Owner           common.Address   `json:"owner"`
	RelayAddress    common.Address   `json:"relay_address"`
	Name            string           `json:"name"`
	Symbol          string           `json:"symbol"`
	TokenID         string           `json:"token_id"`
	TermsURI        string           `json:"terms_uri"`
	TermsHash       common.Hash      `json:"terms_hash"` // hash of the content at TermsURI, not checked here
	IsRestricted    bool             `json:"is_restricted"`
	RegistryAddress common.Address   `json:"registry_address"`
	OperatorAddress common.Address   `json:"operator_address"`
	UseRuleEngine   bool             `json:"use_rule_engine"`
	Guardians       []common.Address `json:"guardians"`
	// DeploymentID is the salt the factory derives the entity address from.
	// Reusing a consumed id is rejected (or ignored) by the factory.
	DeploymentID *big.Int `json:"deployment_id"`
}

// BuildArgs returns the request in the factory's fixed parameter order.
// Reordering these silently corrupts the new entity's configuration.
func (r DeploymentRequest) BuildArgs() []any {
	guardians := make([]common.Address, len(r.Guardians))
	copy(guardians, r.Guardians)

	return []any{
		r.Owner,
		r.RelayAddress,
		r.Name,
		r.Symbol,
		r.TokenID,
		r.TermsURI,
		[32]byte(r.TermsHash),
		r.IsRestricted,
		r.RegistryAddress,
		r.OperatorAddress,
		r.UseRuleEngine,
		guardians,
		new(big.Int).Set(r.DeploymentID),
	}
}

type DeploymentState string

const (
	DeploymentStateIdle      DeploymentState = "idle"
	DeploymentStateSubmitted DeploymentState = "submitted"
	DeploymentStateConfirmed DeploymentState = "confirmed"
	DeploymentStateFailed    DeploymentState = "failed"
)

// DeploymentResult is the terminal artifact of one run.
type DeploymentResult struct {
	RunID           string          `json:"run_id"`
	State           DeploymentState `json:"state"`
	DeploymentID    *big.Int        `json:"deployment_id,omitempty"`
	TransactionHash common.Hash     `json:"transaction_hash"`
	BlockNumber     uint64          `json:"block_number,omitempty"`
	Address         common.Address  `json:"address"`
	// Partial is set when a transaction hash was obtained but the run did not
	// reach a confirmed, resolved outcome. On-chain state is then ambiguous.
	Partial bool `json:"partial"`
	// Err is the failure that ended the run, if any.
	Err *DeploymentError `json:"error,omitempty"`
	// VerificationErr is reported separately; it never fails a deployment.
	VerificationErr *DeploymentError `json:"verification_error,omitempty"`
	VerificationID  string           `json:"verification_id,omitempty"`
}

// Succeeded reports whether the run produced a confirmed, resolved entity.
func (r DeploymentResult) Succeeded() bool {
	return r.Err == nil && r.Address != (common.Address{})
}

// HasTransaction reports whether a build transaction hash was obtained.
func (r DeploymentResult) HasTransaction() bool {
	return r.TransactionHash != (common.Hash{})
}
