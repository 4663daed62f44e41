// Package entrylog holds the ordered, id-keyed collection of entries for one
// open space. It is the single piece of shared mutable state in the sync
// core: the lifecycle manager and the realtime merge engine both mutate it,
// and the UI renders its live sequence.
//
// Every mutator is idempotent or last-write-wins by id, which is sufficient
// because entries are write-once after confirmation. Append is the dedup
// choke point for both local and remote insert paths.
package entrylog

import (
	"sort"
	"sync"

	"github.com/spacedrop/spacedrop/client/internal/types"
)

// EventType identifies a store mutation.
type EventType int

const (
	EventAppend EventType = iota
	EventReplace
	EventPatch
	EventRemove
)

// Event describes one applied mutation. ScrollToLatest asks the active
// composer view to scroll to the newest entry.
type Event struct {
	Type           EventType
	Entry          types.Entry
	OldID          string // set for EventReplace
	ScrollToLatest bool
}

// Patch is a partial entry update. Nil fields are left untouched.
type Patch struct {
	Text           *string
	Meta           map[string]any
	IsLoading      *bool
	UploadProgress *int
	UploadMessage  *string
}

// Store is the reactive, ordered in-memory collection of entries for one
// space, sorted by CreatedAt ascending. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]int // id → index into ordered
	ordered []types.Entry

	watchers []chan Event
	closed   bool
}

// New returns an empty store.
func New() *Store {
	return &Store{byID: make(map[string]int)}
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ordered)
}

// Get returns the entry with the given id.
func (s *Store) Get(id string) (types.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return types.Entry{}, false
	}
	return s.ordered[idx], true
}

// Snapshot returns a copy of the live sequence in display order.
func (s *Store) Snapshot() []types.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Entry, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// IndexOf returns the display position of an entry, or -1.
func (s *Store) IndexOf(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return -1
	}
	return idx
}

// Append inserts an entry at its CreatedAt position. It is a no-op if an
// entry with the same id already exists; both the local confirm path and the
// remote merge path rely on that idempotency.
func (s *Store) Append(e types.Entry) bool {
	s.mu.Lock()
	if _, exists := s.byID[e.ID]; exists {
		s.mu.Unlock()
		return false
	}

	// Entries almost always arrive in timestamp order, so search from the
	// insertion point backwards from the tail.
	idx := sort.Search(len(s.ordered), func(i int) bool {
		return s.ordered[i].CreatedAt.After(e.CreatedAt)
	})
	s.ordered = append(s.ordered, types.Entry{})
	copy(s.ordered[idx+1:], s.ordered[idx:])
	s.ordered[idx] = e
	s.reindexFrom(idx)

	ev := Event{Type: EventAppend, Entry: e, ScrollToLatest: true}
	s.mu.Unlock()
	s.emit(ev)
	return true
}

// Replace swaps the entry with oldID for newEntry, keeping its position in
// the ordered sequence. If newEntry's id is already present elsewhere (a
// remote insert won the race) the stale entry is simply removed, leaving
// exactly one entry under the confirmed id. Unknown oldID is a no-op.
func (s *Store) Replace(oldID string, newEntry types.Entry) bool {
	s.mu.Lock()
	idx, ok := s.byID[oldID]
	if !ok {
		s.mu.Unlock()
		return false
	}

	if _, dup := s.byID[newEntry.ID]; dup && newEntry.ID != oldID {
		// Keep the already-merged copy, drop the placeholder.
		s.removeAtLocked(idx)
		ev := Event{Type: EventRemove, Entry: types.Entry{ID: oldID}, ScrollToLatest: true}
		s.mu.Unlock()
		s.emit(ev)
		return true
	}

	delete(s.byID, oldID)
	s.ordered[idx] = newEntry
	s.byID[newEntry.ID] = idx

	ev := Event{Type: EventReplace, Entry: newEntry, OldID: oldID, ScrollToLatest: true}
	s.mu.Unlock()
	s.emit(ev)
	return true
}

// ApplyPatch updates fields of the entry with id. Unknown ids are safe
// no-ops so late callbacks from torn-down submissions cannot crash.
func (s *Store) ApplyPatch(id string, p Patch) bool {
	s.mu.Lock()
	idx, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	e := &s.ordered[idx]
	if p.Text != nil {
		e.Text = *p.Text
	}
	if p.Meta != nil {
		e.Meta = p.Meta
	}
	if p.IsLoading != nil {
		e.IsLoading = *p.IsLoading
	}
	if p.UploadProgress != nil {
		e.UploadProgress = *p.UploadProgress
	}
	if p.UploadMessage != nil {
		e.UploadMessage = *p.UploadMessage
	}

	ev := Event{Type: EventPatch, Entry: *e, ScrollToLatest: true}
	s.mu.Unlock()
	s.emit(ev)
	return true
}

// Remove deletes the entry with id. Removing an unknown or already-removed
// id is a no-op.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	idx, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.removeAtLocked(idx)

	ev := Event{Type: EventRemove, Entry: types.Entry{ID: id}, ScrollToLatest: true}
	s.mu.Unlock()
	s.emit(ev)
	return true
}

// Watch returns a channel receiving every subsequent mutation. The channel
// is buffered; a slow consumer loses oldest events rather than blocking
// mutators. The channel closes when the store is closed.
func (s *Store) Watch() <-chan Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Event, 256)
	if s.closed {
		close(ch)
		return ch
	}
	s.watchers = append(s.watchers, ch)
	return ch
}

// Close closes all watcher channels. Subsequent mutations still apply but
// are no longer observable.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, ch := range s.watchers {
		close(ch)
	}
	s.watchers = nil
}

func (s *Store) removeAtLocked(idx int) {
	id := s.ordered[idx].ID
	delete(s.byID, id)
	s.ordered = append(s.ordered[:idx], s.ordered[idx+1:]...)
	s.reindexFrom(idx)
}

func (s *Store) reindexFrom(idx int) {
	for i := idx; i < len(s.ordered); i++ {
		s.byID[s.ordered[i].ID] = i
	}
}

func (s *Store) emit(ev Event) {
	s.mu.RLock()
	watchers := s.watchers
	s.mu.RUnlock()
	for _, ch := range watchers {
		select {
		case ch <- ev:
		default:
			// Drop the oldest event to make room; the UI re-reads Snapshot
			// on every event so intermediate states are safe to lose.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}
