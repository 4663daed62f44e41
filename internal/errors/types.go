// Package errors provides error classification for the client SDK.
// Classification drives two decisions: whether the executor may re-run a
// job (recoverability) and which message lands on a failed placeholder
// (taxonomy kind).
package errors

import "fmt"

// ErrorCategory determines how errors should be handled by retry logic.
type ErrorCategory int

const (
	// Recoverable errors may be retried with exponential backoff.
	// Examples: 500 Internal Server Error, network timeouts.
	Recoverable ErrorCategory = iota

	// Irrecoverable errors fail immediately without retry.
	// Examples: 401 Unauthorized, 403 Forbidden, 400 Bad Request.
	Irrecoverable
)

// String returns a human-readable representation of the error category.
func (c ErrorCategory) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Kind is the submission-level taxonomy surfaced on placeholders.
type Kind int

const (
	// KindTransport covers network failures and unclassified gateway errors.
	KindTransport Kind = iota

	// KindValidation rejects bad input (oversized file, wrong MIME type,
	// empty selection) before any async work starts.
	KindValidation

	// KindCompression marks a per-image encode failure; non-fatal to
	// sibling images in the same submission.
	KindCompression

	// KindUpload marks a per-file or per-group upload failure.
	KindUpload

	// KindAuthorization means the gateway refused the write because posting
	// into the space is disallowed. Never retried.
	KindAuthorization
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindCompression:
		return "compression"
	case KindUpload:
		return "upload"
	case KindAuthorization:
		return "authorization"
	default:
		return "transport"
	}
}

// ClassifiedError wraps an error with categorization metadata.
type ClassifiedError struct {
	Category   ErrorCategory
	Kind       Kind
	StatusCode int    // HTTP status code (0 for non-HTTP errors)
	Body       string // Response body for debugging
	Underlying error  // The original error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s/%s] HTTP %d: %v", e.Category, e.Kind, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s/%s] %v", e.Category, e.Kind, e.Underlying)
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *ClassifiedError) Unwrap() error {
	return e.Underlying
}

// IsIrrecoverable returns true if the error should not be retried.
func IsIrrecoverable(err error) bool {
	if classified, ok := err.(*ClassifiedError); ok {
		return classified.Category == Irrecoverable
	}
	return false
}

// KindOf extracts the taxonomy kind, defaulting to transport for plain errors.
func KindOf(err error) Kind {
	if classified, ok := err.(*ClassifiedError); ok {
		return classified.Kind
	}
	return KindTransport
}

// NewValidationError builds an irrecoverable pre-flight rejection.
func NewValidationError(format string, args ...any) *ClassifiedError {
	return &ClassifiedError{
		Category:   Irrecoverable,
		Kind:       KindValidation,
		Underlying: fmt.Errorf(format, args...),
	}
}

// NewCompressionError marks one image's encode failure.
func NewCompressionError(err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Irrecoverable,
		Kind:       KindCompression,
		Underlying: err,
	}
}

// NewUploadError marks one file's or group's upload failure.
func NewUploadError(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Recoverable,
		Kind:       KindUpload,
		Underlying: fmt.Errorf("%s: %w", operation, err),
	}
}
