package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/spacedrop/spacedrop/client/internal/realtime"
	"github.com/spacedrop/spacedrop/client/internal/types"
)

// chanSubscriber hands sessions a test-controlled notification channel.
type chanSubscriber struct {
	mu sync.Mutex
	ch chan realtime.Notification
}

func (s *chanSubscriber) Subscribe(ctx context.Context, spaceID string) (<-chan realtime.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ch = make(chan realtime.Notification, 16)
	ch := s.ch
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (s *chanSubscriber) push(n realtime.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ch <- n
}

// fakeGateway is a minimal in-memory gateway for session-level tests.
func fakeGateway(t *testing.T) (*httptest.Server, *[]types.Entry) {
	t.Helper()
	var mu sync.Mutex
	entries := &[]types.Entry{}
	next := 0

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/spaces/sp1", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Device-Id") == "" {
			t.Error("missing device identity header")
		}
		_ = json.NewEncoder(w).Encode(types.Space{ID: "sp1", Slug: "ROOM42", LastActivityAt: time.Now()})
	})
	mux.HandleFunc("GET /api/spaces/sp1/entries", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		_ = json.NewEncoder(w).Encode(types.ListEntriesResponse{Entries: *entries, Count: len(*entries)})
	})
	mux.HandleFunc("POST /api/spaces/sp1/entries", func(w http.ResponseWriter, r *http.Request) {
		var req types.CreateEntryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		next++
		e := types.Entry{
			ID:        "srv-" + string(rune('0'+next)),
			SpaceID:   "sp1",
			Kind:      req.Kind,
			Text:      req.Text,
			Meta:      req.Meta,
			CreatedAt: time.Now(),
		}
		*entries = append(*entries, e)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(e)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, entries
}

func TestOpenSpace_LoadsTimelineAndMergesPush(t *testing.T) {
	srv, entries := fakeGateway(t)
	*entries = append(*entries, types.Entry{ID: "e1", SpaceID: "sp1", Kind: types.KindText, Text: "existing", CreatedAt: time.Now().Add(-time.Minute)})

	sub := &chanSubscriber{}
	c, err := New(srv.URL, "dev1", WithSubscriber(sub), WithInsertDelay(time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = c.Close() }()

	sess, err := c.OpenSpace(context.Background(), "sp1")
	if err != nil {
		t.Fatalf("OpenSpace: %v", err)
	}
	defer sess.Close()

	if sess.Space().Slug != "ROOM42" {
		t.Fatalf("unexpected space: %+v", sess.Space())
	}
	if got := sess.Entries(); len(got) != 1 || got[0].ID != "e1" {
		t.Fatalf("initial timeline = %+v", got)
	}

	// A push insert from another device lands in the session's log.
	sub.push(realtime.Notification{Type: realtime.NotifyInsert, Entry: types.Entry{
		ID: "e2", SpaceID: "sp1", Kind: types.KindText, Text: "remote", CreatedAt: time.Now(),
	}})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(sess.Entries()) == 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	got := sess.Entries()
	if len(got) != 2 || got[1].ID != "e2" {
		t.Fatalf("timeline after push = %+v", got)
	}
}

func TestSession_PostTextRoundTrip(t *testing.T) {
	srv, _ := fakeGateway(t)

	c, err := New(srv.URL, "dev1", WithSubscriber(&chanSubscriber{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = c.Close() }()

	sess, err := c.OpenSpace(context.Background(), "sp1")
	if err != nil {
		t.Fatalf("OpenSpace: %v", err)
	}
	defer sess.Close()

	events := sess.Events()

	entry, err := sess.PostText(context.Background(), "hello")
	if err != nil {
		t.Fatalf("PostText: %v", err)
	}
	if entry.Text != "hello" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if got := sess.Entries(); len(got) != 1 {
		t.Fatalf("timeline = %+v", got)
	}

	select {
	case ev := <-events:
		if ev.Type != EventAppend || ev.Entry.ID != entry.ID {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no event for confirmed post")
	}
}

func TestOpenSpace_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c, err := New(srv.URL, "dev1", WithSubscriber(&chanSubscriber{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = c.Close() }()

	if _, err := c.OpenSpace(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSession_CloseIdempotentAndClosesEvents(t *testing.T) {
	srv, _ := fakeGateway(t)

	c, err := New(srv.URL, "dev1", WithSubscriber(&chanSubscriber{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = c.Close() }()

	sess, err := c.OpenSpace(context.Background(), "sp1")
	if err != nil {
		t.Fatalf("OpenSpace: %v", err)
	}

	events := sess.Events()
	sess.Close()
	sess.Close() // second close must be a no-op

	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("expected closed events channel")
		}
	case <-time.After(time.Second):
		t.Fatal("events channel not closed")
	}
}
