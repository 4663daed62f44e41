package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	apperrors "github.com/spacedrop/spacedrop/client/internal/errors"
	"github.com/spacedrop/spacedrop/client/internal/types"
)

// CreateNoteEntry mints a note (slug + public code) and its backing
// NOTE-tagged entry in one call. The gateway is the unique-slug source of
// truth; the client-proposed identifiers are advisory.
func CreateNoteEntry(ctx context.Context, hc HTTPClient, baseURL string, req types.CreateNoteEntryRequest) (*types.CreateNoteEntryResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(req.SpaceID, "spaceId"); err != nil {
		return nil, err
	}

	var nr types.CreateNoteEntryResponse
	u := fmt.Sprintf("%s/api/spaces/%s/notes", baseURL, url.PathEscape(req.SpaceID))
	if err := doJSON(ctx, hc, http.MethodPost, u, req, &nr, http.StatusCreated, "create note entry"); err != nil {
		return nil, err
	}
	return &nr, nil
}

// GetNote fetches a note by its editing slug. Returns types.ErrNotFound
// when the slug does not resolve.
func GetNote(ctx context.Context, hc HTTPClient, baseURL, slug string) (*types.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(slug, "noteSlug"); err != nil {
		return nil, err
	}

	var n types.Note
	u := fmt.Sprintf("%s/api/notes/%s", baseURL, url.PathEscape(slug))
	err := doJSON(ctx, hc, http.MethodGet, u, nil, &n, http.StatusOK, "get note")
	if err != nil {
		if ce, ok := err.(*apperrors.ClassifiedError); ok && ce.StatusCode == http.StatusNotFound {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// UpdateNote applies a partial update to the note's owning entry. This is
// the only mutation path for confirmed entries.
func UpdateNote(ctx context.Context, hc HTTPClient, baseURL, slug string, req types.UpdateNoteRequest) (*types.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(slug, "noteSlug"); err != nil {
		return nil, err
	}

	var n types.Note
	u := fmt.Sprintf("%s/api/notes/%s", baseURL, url.PathEscape(slug))
	if err := doJSON(ctx, hc, http.MethodPatch, u, req, &n, http.StatusOK, "update note"); err != nil {
		return nil, err
	}
	return &n, nil
}
