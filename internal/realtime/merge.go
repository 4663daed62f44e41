// Package realtime merges the gateway's per-space push channel into the
// entry log. The channel is at-least-once: redelivery is absorbed by the
// store's idempotent append, and anything missed before subscription is
// healed by the initial full fetch.
package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/spacedrop/spacedrop/client/internal/entrylog"
	"github.com/spacedrop/spacedrop/client/internal/schedule"
	"github.com/spacedrop/spacedrop/client/internal/types"
)

// NotificationType discriminates push notifications.
type NotificationType string

const (
	NotifyInsert NotificationType = "insert"
	NotifyUpdate NotificationType = "update"
)

// Notification is one change event for a subscribed space.
type Notification struct {
	Type  NotificationType
	Entry types.Entry
}

// Subscriber is the push channel: it delivers notifications for one space
// until ctx is done, then closes the returned channel.
type Subscriber interface {
	Subscribe(ctx context.Context, spaceID string) (<-chan Notification, error)
}

// DefaultInsertDelay is how long an insert notification waits before the
// merge applies it. The delay gives a same-origin submission's own replace
// step time to land first, so the idempotent append sees the confirmed id
// already present instead of a transient duplicate.
const DefaultInsertDelay = 200 * time.Millisecond

// Merger applies push notifications to the store.
type Merger struct {
	store       *entrylog.Store
	insertDelay time.Duration
	tasks       *schedule.TaskSet
	log         zerolog.Logger

	mu      sync.Mutex
	pending map[string]struct{} // server ids with an in-flight local confirm
}

// NewMerger builds a merger over the store. insertDelay <= 0 selects the
// default.
func NewMerger(store *entrylog.Store, insertDelay time.Duration, log zerolog.Logger) *Merger {
	if insertDelay <= 0 {
		insertDelay = DefaultInsertDelay
	}
	return &Merger{
		store:       store,
		insertDelay: insertDelay,
		tasks:       schedule.NewTaskSet(),
		log:         log,
		pending:     make(map[string]struct{}),
	}
}

// MarkPendingLocal records that the local lifecycle is about to replace a
// placeholder with serverID. A delayed insert for that id checks this set
// in addition to the store, closing the window where a fast push beats the
// local replace under a slow network.
func (m *Merger) MarkPendingLocal(serverID string) {
	m.mu.Lock()
	m.pending[serverID] = struct{}{}
	m.mu.Unlock()
}

// ClearPendingLocal releases a previously marked id.
func (m *Merger) ClearPendingLocal(serverID string) {
	m.mu.Lock()
	delete(m.pending, serverID)
	m.mu.Unlock()
}

func (m *Merger) isPendingLocal(serverID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.pending[serverID]
	return ok
}

// Run consumes notifications until the channel closes. Call from its own
// goroutine; Stop cancels any still-delayed inserts.
func (m *Merger) Run(ch <-chan Notification) {
	for n := range ch {
		switch n.Type {
		case NotifyInsert:
			m.handleInsert(n.Entry)
		case NotifyUpdate:
			m.handleUpdate(n.Entry)
		default:
			m.log.Debug().Str("type", string(n.Type)).Msg("realtime: unknown notification type")
		}
	}
}

// Stop cancels all scheduled inserts. Late notifications after Stop are
// dropped by the task set, and store mutations on unknown ids are no-ops.
func (m *Merger) Stop() {
	m.tasks.StopAll()
}

func (m *Merger) handleInsert(e types.Entry) {
	if m.isPendingLocal(e.ID) {
		// Our own write; the replace path owns this id. The eventual
		// append from that path makes a second insert here redundant.
		mergeSkippedTotal.Inc()
		return
	}
	m.tasks.After(m.insertDelay, func() {
		if m.isPendingLocal(e.ID) {
			mergeSkippedTotal.Inc()
			return
		}
		if m.store.Append(e) {
			mergeAppliedTotal.Inc()
		} else {
			mergeDedupTotal.Inc()
		}
	})
}

func (m *Merger) handleUpdate(e types.Entry) {
	// Updates cannot race a not-yet-existing id, so no delay is needed.
	text := e.Text
	if !m.store.ApplyPatch(e.ID, entrylog.Patch{Text: &text, Meta: e.Meta}) {
		m.log.Debug().Str("entry", e.ID).Msg("realtime: update for unknown entry dropped")
	}
}
