package client_test

// In-memory Spacedrop gateway used by the mock integration tests. It
// implements just enough of the HTTP surface for the SDK to run end to end:
// spaces, entries, notes, the signed-URL storage protocol and the SSE push
// channel.

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gorilla/mux"

	client "github.com/spacedrop/spacedrop/client"
)

type mockNote struct {
	Slug       string    `json:"slug"`
	PublicCode string    `json:"publicCode"`
	Title      string    `json:"title"`
	Content    string    `json:"content,omitempty"`
	SpaceID    string    `json:"spaceId"`
	EntryID    string    `json:"entryId"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type mockGateway struct {
	mu      sync.Mutex
	srv     *httptest.Server
	nextID  int
	spaces  map[string]client.Space
	entries map[string][]client.Entry // space id → timeline
	notes   map[string]*mockNote      // note slug → note
	objects map[string][]byte         // storage path → bytes
	tokens  map[string]string         // storage path → grant token

	// restricted spaces reject posts from non-creator devices with 403.
	restricted map[string]bool

	// pushDelay delays SSE broadcasts, widening the local-vs-remote race.
	pushDelay time.Duration

	subs map[string][]chan string // space id → SSE event writers
}

func newMockGateway() *mockGateway {
	g := &mockGateway{
		spaces:     make(map[string]client.Space),
		entries:    make(map[string][]client.Entry),
		notes:      make(map[string]*mockNote),
		objects:    make(map[string][]byte),
		tokens:     make(map[string]string),
		restricted: make(map[string]bool),
		subs:       make(map[string][]chan string),
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/spaces", g.createSpace).Methods(http.MethodPost)
	r.HandleFunc("/api/spaces/{id}", g.getSpace).Methods(http.MethodGet)
	r.HandleFunc("/api/rooms/{code}/validate", g.validateCode).Methods(http.MethodGet)
	r.HandleFunc("/api/spaces/{id}/entries", g.listEntries).Methods(http.MethodGet)
	r.HandleFunc("/api/spaces/{id}/entries", g.createEntry).Methods(http.MethodPost)
	r.HandleFunc("/api/spaces/{id}/notes", g.createNote).Methods(http.MethodPost)
	r.HandleFunc("/api/notes/{slug}", g.getNote).Methods(http.MethodGet)
	r.HandleFunc("/api/notes/{slug}", g.updateNote).Methods(http.MethodPatch)
	r.HandleFunc("/api/spaces/{id}/events", g.events).Methods(http.MethodGet)
	r.HandleFunc("/storage/sign", g.sign).Methods(http.MethodPost)
	r.PathPrefix("/storage/upload/").HandlerFunc(g.upload).Methods(http.MethodPut)
	r.PathPrefix("/storage/object/").HandlerFunc(g.object).Methods(http.MethodGet)

	g.srv = httptest.NewServer(r)
	return g
}

func (g *mockGateway) URL() string { return g.srv.URL }
func (g *mockGateway) Close()      { g.srv.Close() }

func (g *mockGateway) id(prefix string) string {
	g.nextID++
	return fmt.Sprintf("%s-%d", prefix, g.nextID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (g *mockGateway) createSpace(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	sp := client.Space{
		ID:              g.id("sp"),
		Slug:            fmt.Sprintf("ROOM%d", g.nextID),
		CreatorDeviceID: r.Header.Get("X-Device-Id"),
		AllowPublicPost: true,
		CreatedAt:       time.Now(),
		LastActivityAt:  time.Now(),
	}
	g.spaces[sp.ID] = sp
	g.mu.Unlock()
	writeJSON(w, http.StatusCreated, sp)
}

func (g *mockGateway) getSpace(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	sp, ok := g.spaces[mux.Vars(r)["id"]]
	if ok {
		sp.LastActivityAt = time.Now()
		g.spaces[sp.ID] = sp
	}
	g.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

func (g *mockGateway) validateCode(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	g.mu.Lock()
	valid := false
	for _, sp := range g.spaces {
		if sp.Slug == code {
			valid = true
			break
		}
	}
	g.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

func (g *mockGateway) listEntries(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	list := append([]client.Entry(nil), g.entries[mux.Vars(r)["id"]]...)
	g.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"entries": list, "count": len(list)})
}

func (g *mockGateway) createEntry(w http.ResponseWriter, r *http.Request) {
	spaceID := mux.Vars(r)["id"]
	device := r.Header.Get("X-Device-Id")

	g.mu.Lock()
	sp, ok := g.spaces[spaceID]
	if !ok {
		g.mu.Unlock()
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if g.restricted[spaceID] && device != sp.CreatorDeviceID {
		g.mu.Unlock()
		w.WriteHeader(http.StatusForbidden)
		return
	}

	var req struct {
		Kind client.EntryKind `json:"kind"`
		Text string           `json:"text"`
		Meta map[string]any   `json:"meta"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	e := client.Entry{
		ID:                g.id("e"),
		SpaceID:           spaceID,
		Kind:              req.Kind,
		Text:              req.Text,
		Meta:              req.Meta,
		CreatedByDeviceID: device,
		CreatedAt:         time.Now(),
	}
	g.entries[spaceID] = append(g.entries[spaceID], e)
	g.mu.Unlock()

	g.broadcast(spaceID, "insert", e)
	writeJSON(w, http.StatusCreated, e)
}

func (g *mockGateway) createNote(w http.ResponseWriter, r *http.Request) {
	spaceID := mux.Vars(r)["id"]
	var req struct {
		Title string `json:"title"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	g.mu.Lock()
	n := &mockNote{
		Slug:       g.id("note"),
		PublicCode: g.id("PUB"),
		Title:      req.Title,
		SpaceID:    spaceID,
		EntryID:    g.id("e"),
		UpdatedAt:  time.Now(),
	}
	g.notes[n.Slug] = n
	e := client.Entry{
		ID:                n.EntryID,
		SpaceID:           spaceID,
		Kind:              client.KindText,
		Text:              fmt.Sprintf("NOTE:%s:%s:%s", n.Slug, n.PublicCode, n.Title),
		CreatedByDeviceID: r.Header.Get("X-Device-Id"),
		CreatedAt:         time.Now(),
	}
	g.entries[spaceID] = append(g.entries[spaceID], e)
	g.mu.Unlock()

	g.broadcast(spaceID, "insert", e)
	writeJSON(w, http.StatusCreated, map[string]string{
		"noteSlug": n.Slug, "publicCode": n.PublicCode, "entryId": n.EntryID,
	})
}

func (g *mockGateway) getNote(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	n, ok := g.notes[mux.Vars(r)["slug"]]
	g.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (g *mockGateway) updateNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	g.mu.Lock()
	n, ok := g.notes[mux.Vars(r)["slug"]]
	if !ok {
		g.mu.Unlock()
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if req.Title != nil {
		n.Title = *req.Title
	}
	if req.Content != nil {
		n.Content = *req.Content
	}
	n.UpdatedAt = time.Now()

	// Patch the owning entry's wire text and announce the update.
	var updated client.Entry
	for i, e := range g.entries[n.SpaceID] {
		if e.ID == n.EntryID {
			g.entries[n.SpaceID][i].Text = fmt.Sprintf("NOTE:%s:%s:%s", n.Slug, n.PublicCode, n.Title)
			updated = g.entries[n.SpaceID][i]
		}
	}
	note := *n
	g.mu.Unlock()

	g.broadcast(n.SpaceID, "update", updated)
	writeJSON(w, http.StatusOK, note)
}

func (g *mockGateway) sign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	g.mu.Lock()
	token := g.id("tok")
	g.tokens[req.Path] = token
	g.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"token": token, "path": req.Path})
}

func (g *mockGateway) upload(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path[len("/storage/upload/"):]
	g.mu.Lock()
	token, ok := g.tokens[path]
	g.mu.Unlock()
	if !ok || r.URL.Query().Get("token") != token {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	g.mu.Lock()
	g.objects[path] = data
	g.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (g *mockGateway) object(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path[len("/storage/object/"):]
	g.mu.Lock()
	data, ok := g.objects[path]
	g.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	_, _ = w.Write(data)
}

// ------------------------- SSE push channel -------------------------

func (g *mockGateway) events(w http.ResponseWriter, r *http.Request) {
	spaceID := mux.Vars(r)["id"]
	fl, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	fl.Flush()

	ch := make(chan string, 64)
	g.mu.Lock()
	g.subs[spaceID] = append(g.subs[spaceID], ch)
	g.mu.Unlock()

	for {
		select {
		case <-r.Context().Done():
			return
		case frame := <-ch:
			_, _ = fmt.Fprint(w, frame)
			fl.Flush()
		}
	}
}

func (g *mockGateway) broadcast(spaceID, event string, e client.Entry) {
	if g.pushDelay > 0 {
		time.Sleep(g.pushDelay)
	}
	payload, _ := json.Marshal(e)
	frame := fmt.Sprintf("event: %s\ndata: %s\n\n", event, payload)
	g.mu.Lock()
	for _, ch := range g.subs[spaceID] {
		select {
		case ch <- frame:
		default:
		}
	}
	g.mu.Unlock()
}
