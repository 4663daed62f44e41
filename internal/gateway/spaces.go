package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	apperrors "github.com/spacedrop/spacedrop/client/internal/errors"
	"github.com/spacedrop/spacedrop/client/internal/types"
)

// CreateSpace creates a new space owned by the calling device.
func CreateSpace(ctx context.Context, hc HTTPClient, baseURL string) (*types.Space, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var s types.Space
	u := fmt.Sprintf("%s/api/spaces", baseURL)
	if err := doJSON(ctx, hc, http.MethodPost, u, struct{}{}, &s, http.StatusCreated, "create space"); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSpace fetches one space by id. Viewing a space refreshes its
// lastActivityAt server-side, so this doubles as the activity touch.
func GetSpace(ctx context.Context, hc HTTPClient, baseURL, spaceID string) (*types.Space, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(spaceID, "spaceId"); err != nil {
		return nil, err
	}
	var s types.Space
	u := fmt.Sprintf("%s/api/spaces/%s", baseURL, url.PathEscape(spaceID))
	err := doJSON(ctx, hc, http.MethodGet, u, nil, &s, http.StatusOK, "get space")
	if err != nil {
		if ce, ok := err.(*apperrors.ClassifiedError); ok && ce.StatusCode == http.StatusNotFound {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ValidateRoomCode reports whether a public short code resolves to a live
// space.
func ValidateRoomCode(ctx context.Context, hc HTTPClient, baseURL, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := types.ValidateIDPresent(code, "code"); err != nil {
		return false, err
	}
	var vr types.ValidateRoomCodeResponse
	u := fmt.Sprintf("%s/api/rooms/%s/validate", baseURL, url.PathEscape(code))
	if err := doJSON(ctx, hc, http.MethodGet, u, nil, &vr, http.StatusOK, "validate room code"); err != nil {
		return false, err
	}
	return vr.Valid, nil
}
