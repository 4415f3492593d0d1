package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

type ErrorKind string

const (
	// ErrorKindConfiguration aborts before any on-chain call.
	ErrorKindConfiguration ErrorKind = "configuration"
	// ErrorKindSubmission means the build call was rejected by the network or contract.
	ErrorKindSubmission ErrorKind = "submission"
	// ErrorKindConfirmationTimeout means the wait never resolved. The build may
	// still land, so callers must inspect chain state before retrying.
	ErrorKindConfirmationTimeout ErrorKind = "confirmation_timeout"
	// ErrorKindAddressNotFound means the factory returned the sentinel address.
	ErrorKindAddressNotFound ErrorKind = "address_not_found"
	// ErrorKindVerification is best-effort and never fails a deployment.
	ErrorKindVerification ErrorKind = "verification"
)

var (
	ErrMissingCredential = errors.New("signing credential is missing")
	ErrAddressNotFound   = errors.New("factory returned the sentinel address")
	ErrReverted          = errors.New("transaction reverted")
)

// DeploymentError tags a failure with the stage it came from.
type DeploymentError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func NewDeploymentError(kind ErrorKind, op string, err error) *DeploymentError {
	return &DeploymentError{Kind: kind, Op: op, Err: err}
}

func (e *DeploymentError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *DeploymentError) Unwrap() error {
	return e.Err
}

func (e *DeploymentError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"kind":    string(e.Kind),
		"op":      e.Op,
		"message": e.Error(),
	})
}

// KindOf returns the kind of the first DeploymentError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var de *DeploymentError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
