// Package compose is the placeholder lifecycle manager: it translates one
// user-initiated post into the entry log's append/replace/remove sequence.
//
// Every submission follows the same state machine:
//
//	Created (placeholder appended)
//	  → InProgress (0..N progress patches)
//	  → Confirmed (placeholder replaced by the gateway's entry)
//	  | Failed   (error patched onto the placeholder, removed after a delay)
//
// Side work (compression, grouping, gateway calls) runs on the shard
// executor keyed by placeholder id, so independent submissions proceed in
// parallel while one submission's stages stay ordered.
package compose

import (
	"context"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/spacedrop/spacedrop/client/internal/entrylog"
	apperrors "github.com/spacedrop/spacedrop/client/internal/errors"
	"github.com/spacedrop/spacedrop/client/internal/media"
	"github.com/spacedrop/spacedrop/client/internal/schedule"
	"github.com/spacedrop/spacedrop/client/internal/types"
)

// State is the submission state machine.
type State int

const (
	StateCreated State = iota
	StateInProgress
	StateConfirmed
	StateFailed
)

// Gateway is the slice of the persistence gateway this manager writes
// through.
type Gateway interface {
	CreateEntry(ctx context.Context, req types.CreateEntryRequest) (*types.Entry, error)
	CreateNoteEntry(ctx context.Context, req types.CreateNoteEntryRequest) (*types.CreateNoteEntryResponse, error)
}

// BlobStore is the signed-URL object storage protocol used by generic file
// uploads.
type BlobStore interface {
	CreateSignedUploadURL(ctx context.Context, path string) (*types.SignedUpload, error)
	UploadToSignedURL(ctx context.Context, path, token string, data []byte, contentType string) error
	PublicURL(path string) string
}

// PendingMarker lets the manager tell the merge engine which server ids it
// is about to claim via replace, so a racing push insert stands down.
type PendingMarker interface {
	MarkPendingLocal(serverID string)
	ClearPendingLocal(serverID string)
}

// File is one user-selected file held in memory.
type File struct {
	Name string
	Type string
	Data []byte
}

// Config tunes one manager. Zero values select defaults.
type Config struct {
	SpaceID  string
	DeviceID string

	// FailureRemoveDelay is how long a failed placeholder stays visible
	// before it is removed and the timeline returns to a clean state.
	FailureRemoveDelay time.Duration

	// MaxFileBytes is the per-item cap checked before any async work.
	MaxFileBytes int64

	MediaOptions media.Options
	GroupBudget  int
}

const (
	// DefaultFailureRemoveDelay keeps the error message readable without
	// leaving a dead placeholder in the timeline.
	DefaultFailureRemoveDelay = 3 * time.Second

	// DefaultMaxFileBytes is the per-item upload cap.
	DefaultMaxFileBytes = 10 << 20
)

func (c Config) withDefaults() Config {
	if c.FailureRemoveDelay <= 0 {
		c.FailureRemoveDelay = DefaultFailureRemoveDelay
	}
	if c.MaxFileBytes <= 0 {
		c.MaxFileBytes = DefaultMaxFileBytes
	}
	if c.GroupBudget <= 0 {
		c.GroupBudget = media.DefaultGroupBudget
	}
	return c
}

// Manager owns placeholder lifecycles for one open space.
type Manager struct {
	cfg     Config
	store   *entrylog.Store
	gw      Gateway
	blobs   BlobStore
	exec    types.Executor
	pending PendingMarker
	tasks   *schedule.TaskSet
	log     zerolog.Logger
	now     func() time.Time

	mu      sync.Mutex
	states  map[string]State
	uploads map[string]*types.PendingUpload
}

// New wires a manager. blobs may be nil if generic file uploads are unused;
// pending may be nil when no merge engine runs (tests).
func New(cfg Config, store *entrylog.Store, gw Gateway, blobs BlobStore, exec types.Executor, pending PendingMarker, log zerolog.Logger) *Manager {
	return &Manager{
		cfg:     cfg.withDefaults(),
		store:   store,
		gw:      gw,
		blobs:   blobs,
		exec:    exec,
		pending: pending,
		tasks:   schedule.NewTaskSet(),
		log:     log,
		now:     time.Now,
		states:  make(map[string]State),
		uploads: make(map[string]*types.PendingUpload),
	}
}

// StateOf reports the submission state for a placeholder id. Failed
// submissions are forgotten once their placeholder is removed.
func (m *Manager) StateOf(placeholderID string) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[placeholderID]
	return s, ok
}

func (m *Manager) setState(placeholderID string, s State) {
	m.mu.Lock()
	m.states[placeholderID] = s
	m.mu.Unlock()
}

// Close cancels pending failure-removal timers. In-flight gateway calls are
// not interrupted; their late patches land on removed ids and no-op.
func (m *Manager) Close() {
	m.tasks.StopAll()
}

// ------------------------- placeholder lifecycle -------------------------

// newLocalID mints an id that can never collide with a server-issued one.
func newLocalID() string {
	return "local-" + xid.New().String()
}

// appendPlaceholder synthesizes and inserts the optimistic entry.
func (m *Manager) appendPlaceholder(kind types.EntryKind, text string, meta map[string]any) types.Entry {
	ph := types.Entry{
		ID:                newLocalID(),
		SpaceID:           m.cfg.SpaceID,
		Kind:              kind,
		Text:              text,
		Meta:              meta,
		CreatedByDeviceID: m.cfg.DeviceID,
		CreatedAt:         m.now(),
		IsLoading:         true,
	}
	m.store.Append(ph)
	m.setState(ph.ID, StateCreated)
	placeholdersCreatedTotal.Inc()
	return ph
}

// progress patches the placeholder's stage message and percentage.
func (m *Manager) progress(placeholderID string, pct int, msg string) {
	m.setState(placeholderID, StateInProgress)
	m.store.ApplyPatch(placeholderID, entrylog.Patch{
		UploadProgress: &pct,
		UploadMessage:  &msg,
	})
}

// confirm swaps the placeholder for the gateway's entry. The server id is
// marked pending-local around the replace so the merge engine's delayed
// insert cannot produce a transient duplicate.
func (m *Manager) confirm(placeholderID string, entry types.Entry) {
	if m.pending != nil {
		m.pending.MarkPendingLocal(entry.ID)
		defer m.pending.ClearPendingLocal(entry.ID)
	}
	if !m.store.Replace(placeholderID, entry) {
		// Placeholder already gone (view torn down mid-flight); fall back
		// to the idempotent insert path.
		m.store.Append(entry)
	}
	m.setState(placeholderID, StateConfirmed)
	placeholdersConfirmedTotal.Inc()
}

// appendConfirmed inserts a confirmed entry that has no placeholder of its
// own (second and later groups of a multi-photo submission).
func (m *Manager) appendConfirmed(entry types.Entry) {
	if m.pending != nil {
		m.pending.MarkPendingLocal(entry.ID)
		defer m.pending.ClearPendingLocal(entry.ID)
	}
	m.store.Append(entry)
}

// notice surfaces a message on a confirmed entry without marking it failed.
// Used when part of a multi-group submission landed and part did not.
func (m *Manager) notice(entryID, message string) {
	m.store.ApplyPatch(entryID, entrylog.Patch{UploadMessage: &message})
}

// fail marks the placeholder failed and schedules its removal. Removal of
// an already-removed id is a no-op, so teardown races are harmless.
func (m *Manager) fail(placeholderID, message string) {
	loading := false
	m.store.ApplyPatch(placeholderID, entrylog.Patch{
		IsLoading:     &loading,
		UploadMessage: &message,
	})
	m.setState(placeholderID, StateFailed)
	placeholdersFailedTotal.Inc()
	m.tasks.After(m.cfg.FailureRemoveDelay, func() {
		m.store.Remove(placeholderID)
		m.mu.Lock()
		delete(m.states, placeholderID)
		m.mu.Unlock()
	})
}

// failWith maps an error onto the user-visible placeholder message. Raw
// error text never reaches the timeline.
func (m *Manager) failWith(placeholderID string, err error) {
	m.log.Warn().Err(err).Str("placeholder", placeholderID).Msg("compose: submission failed")
	var msg string
	switch apperrors.KindOf(err) {
	case apperrors.KindAuthorization:
		msg = "Posting is not allowed in this space"
	case apperrors.KindValidation:
		msg = err.Error()
	case apperrors.KindCompression:
		msg = "Could not process the image"
	case apperrors.KindUpload:
		msg = "Upload failed. Please try again"
	default:
		msg = "Something went wrong. Please try again"
	}
	m.fail(placeholderID, msg)
}
