// Package gateway is the HTTP adapter for the remote persistence gateway:
// the only component allowed to durably create or update records. The sync
// core treats it as given; everything here is thin request/response plumbing
// plus error classification.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	apperrors "github.com/spacedrop/spacedrop/client/internal/errors"
)

// HTTPClient interface for dependency injection
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// doJSON performs one JSON round trip. A nil body sends no payload; a nil
// out discards the response body. Non-expected statuses come back as
// classified errors so callers can distinguish authorization refusals from
// transient failures.
func doJSON(ctx context.Context, hc HTTPClient, method, url string, body, out any, wantStatus int, op string) error {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return apperrors.NewNetworkError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != wantStatus {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apperrors.NewHTTPError(resp.StatusCode, string(raw), op)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
