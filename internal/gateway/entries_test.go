package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/spacedrop/spacedrop/client/internal/errors"
	"github.com/spacedrop/spacedrop/client/internal/types"
)

func TestCreateEntry(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/spaces/sp1/entries" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req types.CreateEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.Kind != types.KindText || req.Text != "hi" {
			t.Errorf("unexpected body: %+v", req)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(types.Entry{ID: "e1", SpaceID: "sp1", Kind: req.Kind, Text: req.Text, CreatedAt: time.Now()})
	}))
	defer srv.Close()

	e, err := CreateEntry(context.Background(), srv.Client(), srv.URL, types.CreateEntryRequest{
		SpaceID: "sp1", Kind: types.KindText, Text: "hi",
	})
	if err != nil {
		t.Fatalf("CreateEntry error: %v", err)
	}
	if e.ID != "e1" {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestCreateEntry_ForbiddenIsAuthorization(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := CreateEntry(context.Background(), srv.Client(), srv.URL, types.CreateEntryRequest{
		SpaceID: "sp1", Kind: types.KindText, Text: "hi",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperrors.IsAuthorization(err) {
		t.Fatalf("403 should classify as authorization, got %v", err)
	}
	if !apperrors.IsIrrecoverable(err) {
		t.Fatalf("403 should be irrecoverable: %v", err)
	}
}

func TestCreateEntry_Validation(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := CreateEntry(context.Background(), srv.Client(), srv.URL, types.CreateEntryRequest{Kind: types.KindText}); err == nil {
		t.Fatal("expected validation error for missing space id")
	}
	if _, err := CreateEntry(context.Background(), srv.Client(), srv.URL, types.CreateEntryRequest{SpaceID: "sp1"}); err == nil {
		t.Fatal("expected validation error for missing kind")
	}
}

func TestListEntries(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/spaces/sp1/entries" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(types.ListEntriesResponse{
			Entries: []types.Entry{{ID: "e1"}, {ID: "e2"}},
			Count:   2,
		})
	}))
	defer srv.Close()

	lr, err := ListEntries(context.Background(), srv.Client(), srv.URL, "sp1")
	if err != nil {
		t.Fatalf("ListEntries error: %v", err)
	}
	if lr.Count != 2 || len(lr.Entries) != 2 {
		t.Fatalf("unexpected response: %+v", lr)
	}
}
