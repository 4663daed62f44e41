package types

// ------------------------------
// Response Types
// ------------------------------

// ListEntriesResponse wraps the space timeline endpoint response
type ListEntriesResponse struct {
	Entries []Entry `json:"entries"`
	Count   int     `json:"count"`
}

// CreateNoteEntryResponse is the minted identity of a new note
type CreateNoteEntryResponse struct {
	NoteSlug   string `json:"noteSlug"`
	PublicCode string `json:"publicCode"`
	EntryID    string `json:"entryId"`
}

// ValidateRoomCodeResponse reports whether a public short code resolves
type ValidateRoomCodeResponse struct {
	Valid bool `json:"valid"`
}

// SignedUpload is an upload grant for one object path
type SignedUpload struct {
	Token string `json:"token"`
	Path  string `json:"path"`
}
