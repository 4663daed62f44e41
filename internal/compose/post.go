package compose

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/spacedrop/spacedrop/client/internal/errors"
	"github.com/spacedrop/spacedrop/client/internal/job"
	"github.com/spacedrop/spacedrop/client/internal/media"
	"github.com/spacedrop/spacedrop/client/internal/types"
)

// PostText sends a plain text entry synchronously. Text is cheap enough
// that no placeholder is needed for latency; a failure is returned to the
// caller so the composer can keep the typed text intact.
func (m *Manager) PostText(ctx context.Context, text string) (*types.Entry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("message is empty")
	}
	entry, err := m.gw.CreateEntry(ctx, types.CreateEntryRequest{
		SpaceID: m.cfg.SpaceID,
		Kind:    types.KindText,
		Text:    types.Payload{Kind: types.PayloadText, Text: text}.Encode(),
	})
	if err != nil {
		m.log.Warn().Err(err).Msg("compose: text post failed")
		return nil, err
	}
	m.appendConfirmed(*entry)
	return entry, nil
}

// PostDrawing submits a locally rendered raster. The placeholder carries
// the preview so the drawing shows instantly; success replaces it 1:1.
func (m *Manager) PostDrawing(ctx context.Context, dataURL string) (string, error) {
	if dataURL == "" {
		return "", apperrors.NewValidationError("drawing is empty")
	}
	wire := types.Payload{Kind: types.PayloadDrawing, Data: dataURL}.Encode()
	ph := m.appendPlaceholder(types.KindText, wire, nil)

	err := m.exec.Submit(ctx, ph.ID, job.New(func(jobCtx context.Context) error {
		entry, err := m.gw.CreateEntry(jobCtx, types.CreateEntryRequest{
			SpaceID: m.cfg.SpaceID,
			Kind:    types.KindText,
			Text:    wire,
		})
		if err != nil {
			m.failWith(ph.ID, err)
			return err
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

// PostPhoto validates, compresses and uploads a single photo. Progress
// patches walk an approximate scale: 20 while optimizing, 60 while
// uploading, 100 on confirm.
func (m *Manager) PostPhoto(ctx context.Context, f File) (string, error) {
	if err := m.validateFile(f); err != nil {
		return "", err
	}
	ph := m.appendPlaceholder(types.KindImage, "", nil)

	err := m.exec.Submit(ctx, ph.ID, job.New(func(jobCtx context.Context) error {
		m.progress(ph.ID, 20, "Optimizing…")
		res, err := media.CompressAdaptive(f.Data, f.Type, m.cfg.MediaOptions)
		if err != nil {
			m.failWith(ph.ID, apperrors.NewCompressionError(err))
			return nil
		}

		m.progress(ph.ID, 60, "Uploading…")
		entry, err := m.gw.CreateEntry(jobCtx, types.CreateEntryRequest{
			SpaceID: m.cfg.SpaceID,
			Kind:    types.KindText,
			Text:    types.Payload{Kind: types.PayloadPhoto, Data: res.DataURL}.Encode(),
		})
		if err != nil {
			m.failWith(ph.ID, err)
			return err
		}

		m.progress(ph.ID, 100, "")
		m.confirm(ph.ID, *entry)
		return nil
	}))
	if err != nil {
		m.failWith(ph.ID, err)
		return "", err
	}
	return ph.ID, nil
}

// PostPhotos submits many photos under one placeholder. Compression
// failures are counted per image and never block siblings. The grouper may
// split the batch into several entries: the first confirmed entry replaces
// the placeholder, later ones are appended directly, preserving timeline
// order.
func (m *Manager) PostPhotos(ctx context.Context, files []File) (string, error) {
	if len(files) == 0 {
		return "", apperrors.NewValidationError("no photos selected")
	}
	for _, f := range files {
		if err := m.validateFile(f); err != nil {
			return "", err
		}
	}
	ph := m.appendPlaceholder(types.KindImage, "", nil)

	err := m.exec.Submit(ctx, ph.ID, job.New(func(jobCtx context.Context) error {
		m.progress(ph.ID, 20, "Optimizing…")

		encoded := make([]string, 0, len(files))
		failed := 0
		for _, f := range files {
			res, err := media.CompressAdaptive(f.Data, f.Type, m.cfg.MediaOptions)
			if err != nil {
				failed++
				m.log.Warn().Err(err).Str("file", f.Name).Msg("compose: photo compression failed")
				continue
			}
			encoded = append(encoded, res.DataURL)
		}
		if len(encoded) == 0 {
			m.fail(ph.ID, "None of the photos could be processed")
			return nil
		}

		msg := "Uploading…"
		if failed > 0 {
			msg = fmt.Sprintf("Uploading… (%d photo(s) skipped)", failed)
		}
		m.progress(ph.ID, 60, msg)

		// Each group posts independently. A failed group never blocks the
		// ones behind it; the count is surfaced afterwards.
		groups := media.PartitionByBudget(encoded, m.cfg.GroupBudget)
		confirmedID := ""
		groupFailures := 0
		var firstErr error
		for _, g := range groups {
			entry, err := m.gw.CreateEntry(jobCtx, types.CreateEntryRequest{
				SpaceID: m.cfg.SpaceID,
				Kind:    types.KindText,
				Text:    g.Payload().Encode(),
			})
			if err != nil {
				groupFailures++
				if firstErr == nil {
					firstErr = err
				}
				m.log.Warn().Err(err).Int("group_failures", groupFailures).Msg("compose: photo group failed")
				continue
			}
			if confirmedID == "" {
				m.progress(ph.ID, 100, "")
				m.confirm(ph.ID, *entry)
				confirmedID = entry.ID
			} else {
				m.appendConfirmed(*entry)
			}
		}
		if confirmedID == "" {
			m.failWith(ph.ID, firstErr)
			return firstErr
		}
		if groupFailures > 0 {
			m.notice(confirmedID, fmt.Sprintf("%d of %d photo sets failed", groupFailures, len(groups)))
		}
		return nil
	}))
	if err != nil {
		m.failWith(ph.ID, err)
		return "", err
	}
	return ph.ID, nil
}

// validateFile enforces the per-item byte cap before any async work.
func (m *Manager) validateFile(f File) error {
	if len(f.Data) == 0 {
		return apperrors.NewValidationError("%s is empty", f.Name)
	}
	if int64(len(f.Data)) > m.cfg.MaxFileBytes {
		return apperrors.NewValidationError(
			"%s is %.1f MB; the limit is %.0f MB",
			f.Name,
			float64(len(f.Data))/(1<<20),
			float64(m.cfg.MaxFileBytes)/(1<<20),
		)
	}
	return nil
}
