package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/spacedrop/spacedrop/client/internal/types"
)

// CreateEntry appends one entry to a space's timeline. The gateway refuses
// the write (403) when the space does not allow the caller to post; that
// surfaces as an authorization-classified error.
func CreateEntry(ctx context.Context, hc HTTPClient, baseURL string, req types.CreateEntryRequest) (*types.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(req.SpaceID, "spaceId"); err != nil {
		return nil, err
	}
	if req.Kind == "" {
		return nil, fmt.Errorf("kind must not be empty")
	}

	var e types.Entry
	u := fmt.Sprintf("%s/api/spaces/%s/entries", baseURL, url.PathEscape(req.SpaceID))
	if err := doJSON(ctx, hc, http.MethodPost, u, req, &e, http.StatusCreated, "create entry"); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEntries retrieves a space's full timeline in createdAt order. The
// initial page load uses this as the source of truth for anything the push
// channel missed before subscription.
func ListEntries(ctx context.Context, hc HTTPClient, baseURL, spaceID string) (*types.ListEntriesResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(spaceID, "spaceId"); err != nil {
		return nil, err
	}

	var lr types.ListEntriesResponse
	u := fmt.Sprintf("%s/api/spaces/%s/entries", baseURL, url.PathEscape(spaceID))
	if err := doJSON(ctx, hc, http.MethodGet, u, nil, &lr, http.StatusOK, "list entries"); err != nil {
		return nil, err
	}
	return &lr, nil
}
