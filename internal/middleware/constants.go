package middleware

// HTTP header constants.
const (
	// HeaderContentType is the Content-Type header name.
	HeaderContentType = "Content-Type"

	// HeaderXRequestID is the X-Request-ID header name.
	HeaderXRequestID = "X-Request-ID"

	// HeaderRetryAfter is the Retry-After header name.
	HeaderRetryAfter = "Retry-After"
)

// ContentTypeJSON is the JSON content type.
const ContentTypeJSON = "application/json"

// ErrInternalServerError is the body written when a handler panics.
const ErrInternalServerError = `{"error":"internal server error"}`

// ErrRateLimitExceeded is the body written when a request is throttled.
const ErrRateLimitExceeded = `{"error":"rate limit exceeded"}`
