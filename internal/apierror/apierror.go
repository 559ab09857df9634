// Package apierror defines the error envelopes the API serializes on 4xx/5xx
// responses. Handlers never hand raw errors to clients; everything passes
// through here so internal detail (SQL, stack traces) stays out of the wire.
package apierror

// APIError carries a single human-readable message.
type APIError struct {
	Detail string `json:"detail"`
}

// Error satisfies the error interface so an APIError can travel through
// Gin's error chain before being serialized.
func (e *APIError) Error() string { return e.Detail }

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError reports per-field binding failures alongside the summary
// message, keyed by the JSON field name the client sent.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation error", Fields: fields}
}
