package compose

import (
	"context"
	"fmt"

	"github.com/rs/xid"

	"github.com/spacedrop/spacedrop/client/internal/blob"
	apperrors "github.com/spacedrop/spacedrop/client/internal/errors"
	"github.com/spacedrop/spacedrop/client/internal/job"
	"github.com/spacedrop/spacedrop/client/internal/types"
)

// PostFiles uploads a batch of generic files under one placeholder. Each
// file goes through the two-step signed-URL protocol independently; one
// failure never aborts its siblings. The entry is created only when at
// least one file succeeded, with the failure count reported.
func (m *Manager) PostFiles(ctx context.Context, files []File) (string, error) {
	if len(files) == 0 {
		return "", apperrors.NewValidationError("no files selected")
	}
	for _, f := range files {
		if err := m.validateFile(f); err != nil {
			return "", err
		}
	}
	if m.blobs == nil {
		return "", fmt.Errorf("file uploads are not configured")
	}

	pending := make([]*types.PendingUpload, len(files))
	for i, f := range files {
		pending[i] = &types.PendingUpload{
			ID:     "upload-" + xid.New().String(),
			Name:   f.Name,
			Size:   int64(len(f.Data)),
			Type:   f.Type,
			Status: types.UploadPending,
		}
		m.trackUpload(pending[i])
	}

	ph := m.appendPlaceholder(types.KindFile, "", map[string]any{
		"type":  "files",
		"count": len(files),
	})

	err := m.exec.Submit(ctx, ph.ID, job.New(func(jobCtx context.Context) error {
		var items []types.FileItem
		failures := 0

		for i, f := range files {
			pu := pending[i]
			m.setUploadStatus(pu.ID, types.UploadUploading, 0, "")
			m.progress(ph.ID, 20+(60*i)/len(files), fmt.Sprintf("Uploading %d/%d…", i+1, len(files)))

			item, err := m.uploadOne(jobCtx, f)
			if err != nil {
				failures++
				m.setUploadStatus(pu.ID, types.UploadError, 0, "")
				m.log.Warn().Err(err).Str("file", f.Name).Msg("compose: file upload failed")
				continue
			}
			m.setUploadStatus(pu.ID, types.UploadDone, 100, item.URL)
			items = append(items, *item)
		}

		if len(items) == 0 {
			m.fail(ph.ID, "All uploads failed. Please try again")
			return nil
		}

		entry, err := m.gw.CreateEntry(jobCtx, types.CreateEntryRequest{
			SpaceID: m.cfg.SpaceID,
			Kind:    types.KindFile,
			Meta: map[string]any{
				"type":  "files",
				"items": items,
			},
		})
		if err != nil {
			m.failWith(ph.ID, err)
			return err
		}

		if failures > 0 {
			m.progress(ph.ID, 100, fmt.Sprintf("%d uploaded, %d failed", len(items), failures))
		} else {
			m.progress(ph.ID, 100, "")
		}
		m.confirm(ph.ID, *entry)
		return nil
	}))
	if err != nil {
		m.failWith(ph.ID, err)
		return "", err
	}
	return ph.ID, nil
}

// uploadOne runs the sign → upload → resolve sequence for a single file.
func (m *Manager) uploadOne(ctx context.Context, f File) (*types.FileItem, error) {
	path := blob.MakeObjectPath(m.cfg.SpaceID, f.Name)

	grant, err := m.blobs.CreateSignedUploadURL(ctx, path)
	if err != nil {
		return nil, apperrors.NewUploadError("sign "+f.Name, err)
	}
	if err := m.blobs.UploadToSignedURL(ctx, grant.Path, grant.Token, f.Data, f.Type); err != nil {
		return nil, apperrors.NewUploadError("upload "+f.Name, err)
	}
	return &types.FileItem{
		Name: f.Name,
		Size: int64(len(f.Data)),
		Type: f.Type,
		URL:  m.blobs.PublicURL(grant.Path),
	}, nil
}

// ------------------------- pending upload tracking -------------------------

func (m *Manager) trackUpload(pu *types.PendingUpload) {
	m.mu.Lock()
	m.uploads[pu.ID] = pu
	m.mu.Unlock()
}

func (m *Manager) setUploadStatus(id string, status types.UploadStatus, progress int, url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pu, ok := m.uploads[id]
	if !ok {
		return
	}
	pu.Status = status
	pu.Progress = progress
	if url != "" {
		pu.URL = url
	}
}

// PendingUploads returns a snapshot of all tracked uploads.
func (m *Manager) PendingUploads() []types.PendingUpload {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.PendingUpload, 0, len(m.uploads))
	for _, pu := range m.uploads {
		out = append(out, *pu)
	}
	return out
}

// RetryFile resets one failed upload back to pending so the user can
// resubmit it. Only that item's status changes; nothing re-uploads
// automatically.
func (m *Manager) RetryFile(uploadID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	pu, ok := m.uploads[uploadID]
	if !ok || pu.Status != types.UploadError {
		return false
	}
	pu.Status = types.UploadPending
	pu.Progress = 0
	return true
}

// RemoveUpload drops a tracked upload (explicit user removal/cancel).
func (m *Manager) RemoveUpload(uploadID string) {
	m.mu.Lock()
	delete(m.uploads, uploadID)
	m.mu.Unlock()
}
