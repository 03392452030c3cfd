package constants

// Context keys set by middleware
const (
	ContextKeyRequestID = "RequestID"
)

// Request and response headers
const (
	HeaderRequestID = "X-Request-ID"
	HeaderCSRF      = "X-CSRF-Token"
)
