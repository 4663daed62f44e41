package types

import "time"

// ------------------------------
// Core Domain Entities
// ------------------------------

// EntryKind enumerates the server-side entry kinds.
type EntryKind string

const (
	KindText  EntryKind = "text"
	KindImage EntryKind = "image"
	KindPDF   EntryKind = "pdf"
	KindFile  EntryKind = "file"
)

// Space represents a shared timeline
type Space struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	CreatorDeviceID string    `json:"creatorDeviceId"`
	Visibility      string    `json:"visibility"`
	AllowPublicPost bool      `json:"allowPublicPost"`
	CreatedAt       time.Time `json:"createdAt"`
	LastActivityAt  time.Time `json:"lastActivityAt"`
}

// InactivityExpiry is how long a space survives without views or posts.
// Expiry is computed client-side from LastActivityAt.
const InactivityExpiry = 48 * time.Hour

// ExpiresAt returns the moment the space becomes eligible for expiry.
func (s Space) ExpiresAt() time.Time { return s.LastActivityAt.Add(InactivityExpiry) }

// Expired reports whether the space has passed its inactivity window at now.
func (s Space) Expired(now time.Time) bool { return now.After(s.ExpiresAt()) }

// Entry represents one timeline item. Confirmed entries are immutable except
// for Text/Meta updates performed through the note update path.
//
// The placeholder fields exist only on client-local entries and never cross
// the wire.
type Entry struct {
	ID                string         `json:"id"`
	SpaceID           string         `json:"spaceId"`
	Kind              EntryKind      `json:"kind"`
	Text              string         `json:"text,omitempty"`
	Meta              map[string]any `json:"meta,omitempty"`
	CreatedByDeviceID string         `json:"createdByDeviceId"`
	CreatedAt         time.Time      `json:"createdAt"`

	// Placeholder-only fields (client local, never persisted).
	IsLoading      bool   `json:"-"`
	UploadProgress int    `json:"-"`
	UploadMessage  string `json:"-"`
}

// Note is a rich-text document projected from one NOTE-tagged entry.
// Slug addresses the editable document; PublicCode addresses read-only views.
type Note struct {
	Slug       string    `json:"slug"`
	PublicCode string    `json:"publicCode"`
	Title      string    `json:"title"`
	Content    string    `json:"content,omitempty"`
	SpaceID    string    `json:"spaceId"`
	EntryID    string    `json:"entryId"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// UploadStatus tracks one pending file between selection and confirmation.
type UploadStatus string

const (
	UploadPending   UploadStatus = "pending"
	UploadUploading UploadStatus = "uploading"
	UploadDone      UploadStatus = "done"
	UploadError     UploadStatus = "error"
)

// PendingUpload is ephemeral, UI-only state for one selected file.
type PendingUpload struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Size     int64        `json:"size"`
	Type     string       `json:"type"`
	Progress int          `json:"progress"`
	Status   UploadStatus `json:"status"`
	URL      string       `json:"url,omitempty"`
}

// FileItem is the confirmed shape stored in a file entry's meta payload.
type FileItem struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	URL  string `json:"url"`
}
