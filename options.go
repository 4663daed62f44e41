package client

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file avoids cluttering
// client.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/spacedrop/spacedrop/client/internal/media"
)

// Option configures a Client during construction in New.
//
// Options are applied before the device-identity transport wrapper is
// installed, so transport-related options (like debug logging) are placed
// underneath it. Options must be deterministic and side-effect free.
type Option func(*Client) error

// WithHTTPTimeout sets the underlying http.Client Timeout used for gateway
// calls.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse safety net that bounds the total time spent on a single HTTP
// request. It does not apply to the push-channel stream, which is
// long-lived by design. The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging wraps the client's transport so each request/response is
// logged when enabled is true. Do not enable in production; dumps include
// headers and full bodies.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			c.http.Transport = &debugTransport{base: c.http.Transport}
		}
		return nil
	}
}

// WithLogger sets the zerolog logger used by the SDK. The default discards
// everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = log
		return nil
	}
}

// WithExecutor injects a custom background executor (tests mostly).
func WithExecutor(exec Executor) Option {
	return func(c *Client) error {
		if exec == nil {
			return fmt.Errorf("executor must not be nil")
		}
		c.exec = exec
		return nil
	}
}

// WithSubscriber injects a push-channel implementation. The default is the
// gateway's SSE endpoint.
func WithSubscriber(sub Subscriber) Option {
	return func(c *Client) error {
		if sub == nil {
			return fmt.Errorf("subscriber must not be nil")
		}
		c.sub = sub
		return nil
	}
}

// WithBlobStore injects the object-storage adapter used by generic file
// uploads.
func WithBlobStore(bs BlobStore) Option {
	return func(c *Client) error {
		if bs == nil {
			return fmt.Errorf("blob store must not be nil")
		}
		c.blobs = bs
		return nil
	}
}

// WithInsertDelay tunes how long the merge engine holds a push insert
// before applying it, leaving the local confirm path room to win.
func WithInsertDelay(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return fmt.Errorf("insert delay must be >= 0")
		}
		c.insertDelay = d
		return nil
	}
}

// WithFailureRemoveDelay tunes how long a failed placeholder stays visible.
func WithFailureRemoveDelay(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("failure remove delay must be > 0")
		}
		c.failureRemoveDelay = d
		return nil
	}
}

// WithMediaOptions overrides the adaptive codec's thresholds and device
// class.
func WithMediaOptions(opts media.Options) Option {
	return func(c *Client) error {
		c.mediaOpts = opts
		return nil
	}
}

// WithGroupBudget overrides the photo batch character budget.
func WithGroupBudget(budget int) Option {
	return func(c *Client) error {
		if budget <= 0 {
			return fmt.Errorf("group budget must be > 0")
		}
		c.groupBudget = budget
		return nil
	}
}

// WithMaxFileBytes overrides the per-item upload cap.
func WithMaxFileBytes(n int64) Option {
	return func(c *Client) error {
		if n <= 0 {
			return fmt.Errorf("max file bytes must be > 0")
		}
		c.maxFileBytes = n
		return nil
	}
}
