package route

import (
	"errors"
	"fmt"
)

// Sentinel errors for descriptor construction and registration.
var (
	// ErrMissingDestination indicates that no destination was configured.
	ErrMissingDestination = errors.New("missing destination")

	// ErrMissingCredential indicates that no token was configured.
	ErrMissingCredential = errors.New("missing credential")

	// ErrInvalidDestination indicates that the destination is not an absolute http(s) URL.
	ErrInvalidDestination = errors.New("invalid destination")

	// ErrInvalidName indicates that the integration name cannot form a route.
	ErrInvalidName = errors.New("invalid integration name")

	// ErrUnknownKind indicates an integration kind outside the known set.
	ErrUnknownKind = errors.New("unknown integration kind")

	// ErrDuplicateRouteID indicates that two descriptors share a route id.
	ErrDuplicateRouteID = errors.New("duplicate route id")
)

// DescriptorError represents a failure to build or register a descriptor.
type DescriptorError struct {
	Name    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *DescriptorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("integration %q: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("integration %q: %s", e.Name, e.Message)
}

// Unwrap returns the underlying error.
func (e *DescriptorError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *DescriptorError) Is(target error) bool {
	_, ok := target.(*DescriptorError)
	return ok || errors.Is(e.Cause, target)
}

func newDescriptorError(name, message string, cause error) *DescriptorError {
	return &DescriptorError{Name: name, Message: message, Cause: cause}
}

// IsMissingConfig reports whether err means an integration was simply not
// configured, which is not fatal.
func IsMissingConfig(err error) bool {
	return errors.Is(err, ErrMissingDestination) || errors.Is(err, ErrMissingCredential)
}
