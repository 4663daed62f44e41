package types

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spacedrop/spacedrop/client/internal/shardqueue"
)

// ------------------------------
// Shared Interfaces
// ------------------------------

// Executor interface for dependency injection (used by async operations)
type Executor interface {
	Submit(context.Context, string, shardqueue.Job) error
}

// HTTPClient interface for dependency injection
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ------------------------------
// Shared Errors
// ------------------------------

// ErrNotFound is returned when a space, entry or note does not exist
var ErrNotFound = errors.New("not found")

// ------------------------------
// Validation helpers
// ------------------------------

// ValidateIDPresent rejects empty identifiers before any network work.
func ValidateIDPresent(id, field string) error {
	if id == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	return nil
}

// ValidateDeviceID rejects a missing device identity.
func ValidateDeviceID(deviceID string) error {
	return ValidateIDPresent(deviceID, "deviceId")
}
