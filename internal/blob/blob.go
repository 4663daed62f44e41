// Package blob uploads files through the storage service's two-step
// signed-URL protocol: request a grant for a content-addressed path, PUT the
// bytes against the grant, then resolve the public URL for the confirmed
// entry's meta payload.
package blob

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/xid"

	apperrors "github.com/spacedrop/spacedrop/client/internal/errors"
	"github.com/spacedrop/spacedrop/client/internal/types"
)

// Store talks to the object storage side of the gateway.
type Store struct {
	rc      *resty.Client
	baseURL string
}

// New builds a Store. The resty client carries its own timeout so a stalled
// upload cannot wedge a submission forever.
func New(baseURL string, timeout time.Duration) *Store {
	rc := resty.New()
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}
	return &Store{rc: rc, baseURL: strings.TrimRight(baseURL, "/")}
}

// CreateSignedUploadURL requests an upload grant for path.
func (s *Store) CreateSignedUploadURL(ctx context.Context, path string) (*types.SignedUpload, error) {
	var grant types.SignedUpload
	resp, err := s.rc.R().
		SetContext(ctx).
		SetBody(types.SignedUploadRequest{Path: path}).
		SetResult(&grant).
		Post(s.baseURL + "/storage/sign")
	if err != nil {
		return nil, apperrors.NewNetworkError("sign upload", err)
	}
	if resp.IsError() {
		return nil, apperrors.NewHTTPError(resp.StatusCode(), resp.String(), "sign upload")
	}
	return &grant, nil
}

// UploadToSignedURL PUTs data against a previously issued grant.
func (s *Store) UploadToSignedURL(ctx context.Context, path, token string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	resp, err := s.rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetQueryParam("token", token).
		SetBody(data).
		Put(s.baseURL + "/storage/upload/" + path)
	if err != nil {
		return apperrors.NewNetworkError("upload", err)
	}
	if resp.IsError() {
		return apperrors.NewHTTPError(resp.StatusCode(), resp.String(), "upload")
	}
	return nil
}

// PublicURL resolves the durable, unauthenticated URL for an uploaded path.
func (s *Store) PublicURL(path string) string {
	return s.baseURL + "/storage/object/" + path
}

// MakeObjectPath builds the content-addressed storage path for one file:
// spaceID/timestamp-random-sanitizedName. The random component keeps
// same-millisecond uploads of identically named files from colliding.
func MakeObjectPath(spaceID, fileName string) string {
	return fmt.Sprintf("%s/%d-%s-%s", spaceID, time.Now().UnixMilli(), xid.New().String(), SanitizeFileName(fileName))
}

// SanitizeFileName strips path separators and any byte that is unsafe in an
// object key, leaving [A-Za-z0-9._-].
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
