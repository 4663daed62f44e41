// Package client is the Spacedrop client SDK: the optimistic
// synchronization layer between a composer UI and the remote persistence
// gateway. A Client holds the connection-level pieces (HTTP, executor,
// push-channel factory); OpenSpace returns a Session owning the live entry
// log for one space.
package client

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/spacedrop/spacedrop/client/internal/blob"
	"github.com/spacedrop/spacedrop/client/internal/compose"
	"github.com/spacedrop/spacedrop/client/internal/gateway"
	"github.com/spacedrop/spacedrop/client/internal/job"
	"github.com/spacedrop/spacedrop/client/internal/media"
	"github.com/spacedrop/spacedrop/client/internal/realtime"
	"github.com/spacedrop/spacedrop/client/internal/shardqueue"
	"github.com/spacedrop/spacedrop/client/internal/types"
)

// Client is the SDK entry point. Construct with New; one Client serves any
// number of concurrently open spaces.
type Client struct {
	baseURL  string
	deviceID string
	http     *http.Client
	stream   *http.Client // no overall timeout; carries the SSE streams
	exec     executor
	blobs    compose.BlobStore
	sub      realtime.Subscriber
	log      zerolog.Logger

	insertDelay        time.Duration
	failureRemoveDelay time.Duration
	mediaOpts          media.Options
	groupBudget        int
	maxFileBytes       int64

	closedOnce uint32 // ensures Close is idempotent
}

// New constructs a Client for the gateway at baseURL, posting as deviceID.
// Additional options can be provided via functional arguments.
func New(baseURL, deviceID string, opts ...Option) (*Client, error) {
	if err := types.ValidateIDPresent(baseURL, "baseURL"); err != nil {
		return nil, err
	}
	if err := types.ValidateDeviceID(deviceID); err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:  baseURL,
		deviceID: deviceID,
		http:     &http.Client{Timeout: 30 * time.Second},
		stream:   &http.Client{},
		log:      zerolog.Nop(),
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.exec == nil {
		c.exec = newDefaultExecutor()
	}
	if c.blobs == nil {
		c.blobs = blob.New(baseURL, 2*time.Minute)
	}

	// Wrap both transports so every request carries the device identity.
	c.http.Transport = &deviceTransport{base: c.http.Transport, deviceID: deviceID}
	c.stream.Transport = &deviceTransport{base: c.stream.Transport, deviceID: deviceID}

	if c.sub == nil {
		c.sub = realtime.NewSSESubscriber(c.stream, baseURL, c.log)
	}

	return c, nil
}

// deviceTransport adds the anonymous device identity header to every
// request. There is no authentication; the header only attributes writes.
type deviceTransport struct {
	base     http.RoundTripper
	deviceID string
}

func (t *deviceTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	cloned := req.Clone(req.Context())
	cloned.Header.Set("X-Device-Id", t.deviceID)
	return base.RoundTrip(cloned)
}

// Close stops the background executor (if any). Safe to call multiple times.
// Sessions should be closed first; late job callbacks into closed sessions
// are no-ops by design of the store.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	if c.exec != nil {
		c.exec.Stop()
	}
	return nil
}

// AwaitConsistency blocks until all previously submitted jobs for the given
// key (a placeholder or space id) have been executed, by submitting a no-op
// job and waiting for it to run.
func (c *Client) AwaitConsistency(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan struct{})
	j := job.New(func(context.Context) error {
		close(done)
		return nil
	})
	if err := c.exec.Submit(ctx, key, j); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// newDefaultExecutor constructs the shardqueue executor with sane defaults.
func newDefaultExecutor() *shardqueue.ShardExecutor {
	cfg := shardqueue.Config{Shards: 4, QueueSize: 1000}
	return shardqueue.NewShardExecutor(cfg)
}

// --------------------------------------------------------------------
// Space operations - delegated to internal/gateway
// --------------------------------------------------------------------

// CreateSpace creates a new space owned by this device.
func (c *Client) CreateSpace(ctx context.Context) (*Space, error) {
	return gateway.CreateSpace(ctx, c.http, c.baseURL)
}

// GetSpace fetches a space by id, refreshing its activity timestamp.
func (c *Client) GetSpace(ctx context.Context, spaceID string) (*Space, error) {
	return gateway.GetSpace(ctx, c.http, c.baseURL, spaceID)
}

// ValidateRoomCode reports whether a public short code resolves to a live
// space.
func (c *Client) ValidateRoomCode(ctx context.Context, code string) (bool, error) {
	return gateway.ValidateRoomCode(ctx, c.http, c.baseURL, code)
}

// --------------------------------------------------------------------
// Note operations - delegated to internal/gateway
// --------------------------------------------------------------------

// GetNote fetches a note by its editing slug; ErrNotFound if absent.
func (c *Client) GetNote(ctx context.Context, slug string) (*Note, error) {
	return gateway.GetNote(ctx, c.http, c.baseURL, slug)
}

// UpdateNote applies a partial update to a note's owning entry. This is
// the only mutation path for confirmed entries.
func (c *Client) UpdateNote(ctx context.Context, slug string, req UpdateNoteRequest) (*Note, error) {
	return gateway.UpdateNote(ctx, c.http, c.baseURL, slug, req)
}
