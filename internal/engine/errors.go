package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/sloimpact/internal/model"
)

// PropagationError represents an error detected while calculating impacts.
//
// Propagation errors include:
//   - Invalid input: nil violation, rule without a location
//   - Lookup failure: an element the walk needs is not in the system
//   - Collaborator failure: the ledger or the system repository failed
//   - Quota exceeded: the calculation created more impacts than allowed
type PropagationError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Location is where the walk was when it failed, if anywhere.
	Location model.Location

	// Err is the collaborator error, if any.
	Err error
}

// ErrorCode categorizes propagation errors.
type ErrorCode string

const (
	// ErrCodeInvalidInput indicates the violation cannot start a walk.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrCodeLookupFailed indicates a referenced element is not in the system.
	ErrCodeLookupFailed ErrorCode = "LOOKUP_FAILED"

	// ErrCodeLedgerFailed indicates the ledger refused an impact.
	ErrCodeLedgerFailed ErrorCode = "LEDGER_FAILED"

	// ErrCodeRepositoryFailed indicates the owning system could not be loaded.
	ErrCodeRepositoryFailed ErrorCode = "REPOSITORY_FAILED"

	// ErrCodeQuotaExceeded indicates the impact budget ran out.
	ErrCodeQuotaExceeded ErrorCode = "QUOTA_EXCEEDED"
)

// Error implements the error interface.
func (e *PropagationError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if !e.Location.IsZero() {
		msg += fmt.Sprintf(" (at %s)", e.Location)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the collaborator error to errors.Is and errors.As.
func (e *PropagationError) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first PropagationError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var pe *PropagationError
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	return "", false
}

// IsInputError returns true if the violation could not start a walk.
func IsInputError(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == ErrCodeInvalidInput
}

// IsLookupError returns true if an element was missing from the system.
func IsLookupError(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == ErrCodeLookupFailed
}

// IsQuotaError returns true if the impact budget was exceeded.
func IsQuotaError(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == ErrCodeQuotaExceeded
}

func inputError(format string, args ...any) *PropagationError {
	return &PropagationError{
		Code:    ErrCodeInvalidInput,
		Message: fmt.Sprintf(format, args...),
	}
}

func lookupError(loc model.Location, format string, args ...any) *PropagationError {
	return &PropagationError{
		Code:     ErrCodeLookupFailed,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	}
}

func ledgerError(loc model.Location, err error) *PropagationError {
	return &PropagationError{
		Code:     ErrCodeLedgerFailed,
		Message:  "persist impact",
		Location: loc,
		Err:      err,
	}
}

func repositoryError(architectureID string, err error) *PropagationError {
	return &PropagationError{
		Code:    ErrCodeRepositoryFailed,
		Message: fmt.Sprintf("load system for architecture %q", architectureID),
		Err:     err,
	}
}

// NewQuotaError creates a PropagationError for an exhausted impact budget.
func NewQuotaError(loc model.Location, impacts, maxImpacts int) *PropagationError {
	return &PropagationError{
		Code:     ErrCodeQuotaExceeded,
		Message:  fmt.Sprintf("calculation exceeded max impacts (%d > %d)", impacts, maxImpacts),
		Location: loc,
	}
}
