package issue

import (
	"errors"
	"fmt"
)

// Kind categorizes provisioning failures.
type Kind string

const (
	// KindCreationFailed indicates the tracker refused to create an issue.
	KindCreationFailed Kind = "CREATION_FAILED"

	// KindLinkageFailed indicates two issues could not be linked.
	KindLinkageFailed Kind = "LINKAGE_FAILED"

	// KindLookupFailed indicates the notification could not be resolved
	// against its system or the issue location is unknown.
	KindLookupFailed Kind = "LOOKUP_FAILED"
)

// ProvisioningError reports a failed interaction with the tracker.
type ProvisioningError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *ProvisioningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

func kindOf(err error) (Kind, bool) {
	var pe *ProvisioningError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

// IsCreationFailed returns true if err reports a refused issue creation.
func IsCreationFailed(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindCreationFailed
}

// IsLinkageFailed returns true if err reports a failed link.
func IsLinkageFailed(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindLinkageFailed
}

// IsLookupFailed returns true if err reports an unresolvable notification.
func IsLookupFailed(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindLookupFailed
}

func provisioningError(kind Kind, err error, format string, args ...any) *ProvisioningError {
	return &ProvisioningError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}
