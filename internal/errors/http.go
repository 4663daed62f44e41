package errors

import (
	"fmt"
	"net/http"
)

// ClassifyHTTPError determines how an HTTP failure should be handled:
// 4xx client errors (except 408/429) are irrecoverable, 5xx and
// network-level errors are recoverable. 401/403 map to the authorization
// kind so the lifecycle manager can surface "posting not allowed".
func ClassifyHTTPError(statusCode int, body string, underlyingErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:   getHTTPErrorCategory(statusCode),
		Kind:       getHTTPErrorKind(statusCode),
		StatusCode: statusCode,
		Body:       body,
		Underlying: underlyingErr,
	}
}

func getHTTPErrorCategory(statusCode int) ErrorCategory {
	switch {
	case statusCode >= 400 && statusCode < 500:
		switch statusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests:
			return Recoverable
		default:
			return Irrecoverable
		}
	case statusCode >= 500 && statusCode < 600:
		return Recoverable
	default:
		// Unexpected status codes - be conservative and retry
		return Recoverable
	}
}

func getHTTPErrorKind(statusCode int) Kind {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthorization
	default:
		return KindTransport
	}
}

// NewHTTPError creates a classified error for HTTP failures.
func NewHTTPError(statusCode int, body string, operation string) *ClassifiedError {
	underlyingErr := fmt.Errorf("%s failed: HTTP %d", operation, statusCode)
	return ClassifyHTTPError(statusCode, body, underlyingErr)
}

// NewNetworkError creates a classified error for network-level failures,
// which are always treated as transient.
func NewNetworkError(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Recoverable,
		Kind:       KindTransport,
		Underlying: fmt.Errorf("%s network error: %w", operation, err),
	}
}

// IsAuthorization reports whether the gateway refused the write outright.
func IsAuthorization(err error) bool {
	return KindOf(err) == KindAuthorization
}
