package compose

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/spacedrop/spacedrop/client/internal/job"
	"github.com/spacedrop/spacedrop/client/internal/types"
)

// NoteCreated is returned once a note's backing entry is confirmed, so the
// caller can navigate to the editing view.
type NoteCreated struct {
	PlaceholderID string
	Slug          string
	PublicCode    string
}

// CreateNote mints a note and its backing NOTE-tagged entry. The
// placeholder carries client-proposed slug/code so the note renders
// immediately; the gateway's existence checks make it the unique-slug
// source of truth, and the confirmed entry carries whatever identity it
// actually assigned. onCreated, if set, fires after confirmation with the
// final identity.
func (m *Manager) CreateNote(ctx context.Context, title string, onCreated func(NoteCreated)) (string, error) {
	if strings.TrimSpace(title) == "" {
		title = "Untitled note"
	}

	// Advisory identity; collision handling belongs to the gateway.
	proposed := types.NoteRef{
		Slug:       newNoteSlug(),
		PublicCode: newPublicCode(),
		Title:      title,
	}
	wire := types.Payload{Kind: types.PayloadNoteRef, Note: proposed}.Encode()
	ph := m.appendPlaceholder(types.KindText, wire, nil)

	err := m.exec.Submit(ctx, ph.ID, job.New(func(jobCtx context.Context) error {
		resp, err := m.gw.CreateNoteEntry(jobCtx, types.CreateNoteEntryRequest{
			SpaceID: m.cfg.SpaceID,
			Title:   title,
		})
		if err != nil {
			m.failWith(ph.ID, err)
			return err
		}

		final := types.NoteRef{Slug: resp.NoteSlug, PublicCode: resp.PublicCode, Title: title}
		entry := types.Entry{
			ID:                resp.EntryID,
			SpaceID:           m.cfg.SpaceID,
			Kind:              types.KindText,
			Text:              types.Payload{Kind: types.PayloadNoteRef, Note: final}.Encode(),
			CreatedByDeviceID: m.cfg.DeviceID,
			CreatedAt:         m.now(),
		}
		m.confirm(ph.ID, entry)

		if onCreated != nil {
			onCreated(NoteCreated{
				PlaceholderID: ph.ID,
				Slug:          resp.NoteSlug,
				PublicCode:    resp.PublicCode,
			})
		}
		return nil
	}))
	if err != nil {
		m.failWith(ph.ID, err)
		return "", err
	}
	return ph.ID, nil
}

// newNoteSlug mints a URL-safe editing slug.
func newNoteSlug() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// newPublicCode mints the separate read-only viewing code.
func newPublicCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
