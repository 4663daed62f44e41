package types

// ------------------------------
// Request Types
// ------------------------------

// CreateEntryRequest holds parameters for a new entry
type CreateEntryRequest struct {
	SpaceID string         `json:"spaceId"`
	Kind    EntryKind      `json:"kind"`
	Text    string         `json:"text,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// CreateNoteEntryRequest holds parameters for a new note-backed entry
type CreateNoteEntryRequest struct {
	SpaceID string `json:"spaceId"`
	Title   string `json:"title,omitempty"`
}

// UpdateNoteRequest carries a partial note update; nil fields are untouched
type UpdateNoteRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// SignedUploadRequest asks the storage service for an upload grant
type SignedUploadRequest struct {
	Path string `json:"path"`
}
