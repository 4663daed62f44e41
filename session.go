package client

import (
	"context"
	"sync/atomic"

	"github.com/spacedrop/spacedrop/client/internal/compose"
	"github.com/spacedrop/spacedrop/client/internal/entrylog"
	"github.com/spacedrop/spacedrop/client/internal/gateway"
	"github.com/spacedrop/spacedrop/client/internal/realtime"
	"github.com/spacedrop/spacedrop/client/internal/types"
)

// Session is one open space: the live entry log, the placeholder lifecycle
// manager and the realtime merge engine wired together. Create with
// Client.OpenSpace; always Close when the view is torn down.
type Session struct {
	client   *Client
	space    types.Space
	store    *entrylog.Store
	merger   *realtime.Merger
	composer *compose.Manager
	cancel   context.CancelFunc

	closedOnce uint32
}

// OpenSpace loads a space's timeline and subscribes to its push channel.
// The initial full fetch is the source of truth for anything the channel
// missed before subscription.
func (c *Client) OpenSpace(ctx context.Context, spaceID string) (*Session, error) {
	sp, err := gateway.GetSpace(ctx, c.http, c.baseURL, spaceID)
	if err != nil {
		return nil, err
	}

	store := entrylog.New()
	lr, err := gateway.ListEntries(ctx, c.http, c.baseURL, spaceID)
	if err != nil {
		return nil, err
	}
	for _, e := range lr.Entries {
		store.Append(e)
	}

	merger := realtime.NewMerger(store, c.insertDelay, c.log)
	composer := compose.New(compose.Config{
		SpaceID:            sp.ID,
		DeviceID:           c.deviceID,
		FailureRemoveDelay: c.failureRemoveDelay,
		MaxFileBytes:       c.maxFileBytes,
		MediaOptions:       c.mediaOpts,
		GroupBudget:        c.groupBudget,
	}, store, gatewayAPI{c: c}, c.blobs, c.exec, merger, c.log)

	// The subscription outlives the opening ctx; it is bound to the session.
	subCtx, cancel := context.WithCancel(context.Background())
	ch, err := c.sub.Subscribe(subCtx, sp.ID)
	if err != nil {
		cancel()
		composer.Close()
		store.Close()
		return nil, err
	}
	go merger.Run(ch)

	return &Session{
		client:   c,
		space:    *sp,
		store:    store,
		merger:   merger,
		composer: composer,
		cancel:   cancel,
	}, nil
}

// Space returns the space this session renders.
func (s *Session) Space() Space { return s.space }

// Entries returns a snapshot of the timeline in display order.
func (s *Session) Entries() []Entry { return s.store.Snapshot() }

// Events returns a channel of store mutations for the UI render loop. The
// channel closes when the session closes.
func (s *Session) Events() <-chan Event { return s.store.Watch() }

// Close tears the session down deterministically: the subscription ends,
// scheduled merge inserts and failure-removal timers are cancelled, and
// event channels close. Late callbacks from in-flight jobs become no-ops.
func (s *Session) Close() {
	if !atomic.CompareAndSwapUint32(&s.closedOnce, 0, 1) {
		return
	}
	s.cancel()
	s.merger.Stop()
	s.composer.Close()
	s.store.Close()
}

// --------------------------------------------------------------------
// Posting - delegated to the lifecycle manager
// --------------------------------------------------------------------

// PostText sends a plain text entry synchronously; no placeholder is used.
func (s *Session) PostText(ctx context.Context, text string) (*Entry, error) {
	return s.composer.PostText(ctx, text)
}

// PostDrawing submits a locally rendered drawing optimistically and returns
// the placeholder id.
func (s *Session) PostDrawing(ctx context.Context, dataURL string) (string, error) {
	return s.submit(s.composer.PostDrawing(ctx, dataURL))
}

// PostPhoto validates, compresses and uploads one photo optimistically.
func (s *Session) PostPhoto(ctx context.Context, f File) (string, error) {
	return s.submit(s.composer.PostPhoto(ctx, f))
}

// PostPhotos submits a batch of photos under one placeholder; the batch may
// confirm into more than one entry.
func (s *Session) PostPhotos(ctx context.Context, files []File) (string, error) {
	return s.submit(s.composer.PostPhotos(ctx, files))
}

// PostFiles uploads generic files through the signed-URL protocol.
func (s *Session) PostFiles(ctx context.Context, files []File) (string, error) {
	return s.submit(s.composer.PostFiles(ctx, files))
}

// CreateNote mints a note and its backing entry; onCreated fires with the
// confirmed identity so the app can navigate to the editor.
func (s *Session) CreateNote(ctx context.Context, title string, onCreated func(NoteCreated)) (string, error) {
	return s.submit(s.composer.CreateNote(ctx, title, onCreated))
}

// RetryFile resets one failed pending upload back to pending.
func (s *Session) RetryFile(uploadID string) bool { return s.composer.RetryFile(uploadID) }

// PendingUploads snapshots the per-file upload tracker.
func (s *Session) PendingUploads() []PendingUpload { return s.composer.PendingUploads() }

// submit records post metrics around a composer submission result.
func (s *Session) submit(placeholderID string, err error) (string, error) {
	if err != nil {
		postsFailedTotal.WithLabelValues(shardLabelFor(placeholderID, s.space.ID)).Inc()
		return placeholderID, err
	}
	postsEnqueuedTotal.WithLabelValues(shardLabelFor(placeholderID, s.space.ID)).Inc()
	return placeholderID, nil
}

// gatewayAPI adapts the client's HTTP plumbing to the composer's gateway
// interface.
type gatewayAPI struct{ c *Client }

func (g gatewayAPI) CreateEntry(ctx context.Context, req types.CreateEntryRequest) (*types.Entry, error) {
	return gateway.CreateEntry(ctx, g.c.http, g.c.baseURL, req)
}

func (g gatewayAPI) CreateNoteEntry(ctx context.Context, req types.CreateNoteEntryRequest) (*types.CreateNoteEntryResponse, error) {
	return gateway.CreateNoteEntry(ctx, g.c.http, g.c.baseURL, req)
}
