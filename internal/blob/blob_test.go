package blob

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	apperrors "github.com/spacedrop/spacedrop/client/internal/errors"
	"github.com/spacedrop/spacedrop/client/internal/types"
)

func TestCreateSignedUploadURL(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/storage/sign" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req types.SignedUploadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.Path != "sp1/123-abc-photo.jpg" {
			t.Errorf("unexpected path: %s", req.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(types.SignedUpload{Token: "tok", Path: req.Path})
	}))
	defer srv.Close()

	s := New(srv.URL, time.Second)
	grant, err := s.CreateSignedUploadURL(context.Background(), "sp1/123-abc-photo.jpg")
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}
	if grant.Token != "tok" {
		t.Fatalf("unexpected grant: %+v", grant)
	}
}

func TestUploadToSignedURL(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if !strings.HasPrefix(r.URL.Path, "/storage/upload/sp1/") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("token") != "tok" {
			t.Errorf("missing grant token")
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/pdf" {
			t.Errorf("content type = %s", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "pdf bytes" {
			t.Errorf("unexpected body: %q", body)
		}
	}))
	defer srv.Close()

	s := New(srv.URL, time.Second)
	if err := s.UploadToSignedURL(context.Background(), "sp1/doc.pdf", "tok", []byte("pdf bytes"), "application/pdf"); err != nil {
		t.Fatalf("upload error: %v", err)
	}
}

func TestUploadToSignedURL_ExpiredGrant(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := New(srv.URL, time.Second)
	err := s.UploadToSignedURL(context.Background(), "sp1/doc.pdf", "stale", []byte("x"), "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperrors.IsAuthorization(err) {
		t.Fatalf("expired grant should classify as authorization: %v", err)
	}
}

func TestPublicURL(t *testing.T) {
	t.Parallel()
	s := New("http://store.example/", 0)
	if got := s.PublicURL("sp1/doc.pdf"); got != "http://store.example/storage/object/sp1/doc.pdf" {
		t.Fatalf("unexpected url: %s", got)
	}
}

func TestMakeObjectPath_UniqueAndScoped(t *testing.T) {
	t.Parallel()
	p1 := MakeObjectPath("sp1", "my photo.jpg")
	p2 := MakeObjectPath("sp1", "my photo.jpg")

	if p1 == p2 {
		t.Fatal("same-name uploads must not collide")
	}
	re := regexp.MustCompile(`^sp1/\d+-[0-9a-v]{20}-my_photo\.jpg$`)
	if !re.MatchString(p1) {
		t.Fatalf("unexpected path shape: %s", p1)
	}
}

func TestSanitizeFileName(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"report.pdf":       "report.pdf",
		"../../etc/passwd": ".._.._etc_passwd",
		"my photo (1).jpg": "my_photo__1_.jpg",
		"":                 "file",
		"ünïcode.png":      "_n_code.png",
	}
	for in, want := range cases {
		if got := SanitizeFileName(in); got != want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
