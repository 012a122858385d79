package proxy

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sony/gobreaker"
)

// Sentinel errors for proxy operations.
var (
	// ErrTransformFailed indicates the outbound transform rejected the request.
	ErrTransformFailed = errors.New("request transform failed")

	// ErrNoSnapshot indicates the source has no routing snapshot to serve.
	ErrNoSnapshot = errors.New("no routing snapshot available")

	// ErrUpstreamUnavailable indicates that the upstream could not be reached.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// Upstream error reasons used as the metrics label.
const (
	reasonTransform   = "transform"
	reasonCircuitOpen = "circuit_open"
	reasonTimeout     = "timeout"
	reasonCanceled    = "canceled"
	reasonConnection  = "connection"
)

// ProxyError represents a forwarding failure with details.
type ProxyError struct {
	Op      string // Operation that failed
	Cluster string // Cluster id if applicable
	Message string // Human-readable message
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *ProxyError) Error() string {
	if e.Cluster != "" {
		if e.Cause != nil {
			return fmt.Sprintf("proxy error [%s] cluster=%s: %s: %v", e.Op, e.Cluster, e.Message, e.Cause)
		}
		return fmt.Sprintf("proxy error [%s] cluster=%s: %s", e.Op, e.Cluster, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("proxy error [%s]: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("proxy error [%s]: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProxyError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *ProxyError) Is(target error) bool {
	_, ok := target.(*ProxyError)
	return ok || errors.Is(e.Cause, target)
}

// NewTransformError wraps a transform failure for cluster.
func NewTransformError(cluster string, cause error) *ProxyError {
	return &ProxyError{
		Op:      "transform",
		Cluster: cluster,
		Message: ErrTransformFailed.Error(),
		Cause:   fmt.Errorf("%w: %w", ErrTransformFailed, cause),
	}
}

// NewUpstreamError wraps a failed round trip to cluster.
func NewUpstreamError(cluster string, cause error) *ProxyError {
	return &ProxyError{
		Op:      "round_trip",
		Cluster: cluster,
		Message: ErrUpstreamUnavailable.Error(),
		Cause:   fmt.Errorf("%w: %w", ErrUpstreamUnavailable, cause),
	}
}

// IsTransformError checks if an error was raised by the outbound transform.
func IsTransformError(err error) bool {
	return errors.Is(err, ErrTransformFailed)
}

// IsCircuitOpenError checks if an error was raised by an open breaker.
func IsCircuitOpenError(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// classify maps a forwarding error to its metrics reason.
func classify(ctx context.Context, err error) string {
	switch {
	case IsTransformError(err):
		return reasonTransform
	case IsCircuitOpenError(err):
		return reasonCircuitOpen
	case errors.Is(err, context.Canceled), ctx.Err() == context.Canceled:
		return reasonCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return reasonTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return reasonTimeout
	}
	return reasonConnection
}
