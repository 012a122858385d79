package credential

import (
	"errors"
	"fmt"
)

// ErrMisconfiguredCredential indicates that authorization was requested from a
// provider that was constructed without a token.
var ErrMisconfiguredCredential = errors.New("misconfigured credential")

// CredentialError represents a failure to apply a credential.
type CredentialError struct {
	Operation string
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *CredentialError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("credential %s: %s: %v", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("credential %s: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying error.
func (e *CredentialError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *CredentialError) Is(target error) bool {
	_, ok := target.(*CredentialError)
	return ok || errors.Is(e.Cause, target)
}

func newMisconfiguredError(op string) *CredentialError {
	return &CredentialError{
		Operation: op,
		Message:   "no token configured for this route",
		Cause:     ErrMisconfiguredCredential,
	}
}
