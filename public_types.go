package client

import (
	"github.com/spacedrop/spacedrop/client/internal/compose"
	"github.com/spacedrop/spacedrop/client/internal/entrylog"
	"github.com/spacedrop/spacedrop/client/internal/media"
	"github.com/spacedrop/spacedrop/client/internal/realtime"
	"github.com/spacedrop/spacedrop/client/internal/types"
)

// Public type aliases so SDK consumers can import only the client package.

// Domain entities
type (
	Space         = types.Space
	Entry         = types.Entry
	EntryKind     = types.EntryKind
	Note          = types.Note
	NoteRef       = types.NoteRef
	PendingUpload = types.PendingUpload
	UploadStatus  = types.UploadStatus
	FileItem      = types.FileItem

	// Payload is the decoded form of an entry's tagged text field.
	Payload     = types.Payload
	PayloadKind = types.PayloadKind
)

// Entry kinds
const (
	KindText  = types.KindText
	KindImage = types.KindImage
	KindPDF   = types.KindPDF
	KindFile  = types.KindFile
)

// Upload states
const (
	UploadPending   = types.UploadPending
	UploadUploading = types.UploadUploading
	UploadDone      = types.UploadDone
	UploadError     = types.UploadError
)

// Payload kinds
const (
	PayloadText     = types.PayloadText
	PayloadDrawing  = types.PayloadDrawing
	PayloadPhoto    = types.PayloadPhoto
	PayloadPhotoSet = types.PayloadPhotoSet
	PayloadNoteRef  = types.PayloadNoteRef
)

// DecodePayload parses an entry's wire text into the payload union.
func DecodePayload(text string) Payload { return types.DecodePayload(text) }

// Requests
type (
	UpdateNoteRequest = types.UpdateNoteRequest
)

// Composer surface
type (
	File        = compose.File
	NoteCreated = compose.NoteCreated
	BlobStore   = compose.BlobStore
)

// Realtime push surface. Custom subscribers (for tests or alternative
// transports) implement Subscriber and are installed via WithSubscriber.
type (
	Subscriber       = realtime.Subscriber
	Notification     = realtime.Notification
	NotificationType = realtime.NotificationType
)

const (
	NotifyInsert = realtime.NotifyInsert
	NotifyUpdate = realtime.NotifyUpdate
)

// Store events
type (
	Event     = entrylog.Event
	EventType = entrylog.EventType
)

const (
	EventAppend  = entrylog.EventAppend
	EventReplace = entrylog.EventReplace
	EventPatch   = entrylog.EventPatch
	EventRemove  = entrylog.EventRemove
)

// Media codec configuration
type (
	MediaOptions = media.Options
	DeviceClass  = media.DeviceClass
	MediaResult  = media.Result
)

const (
	Desktop = media.Desktop
	Mobile  = media.Mobile
)

// CompressImageAdaptive exposes the adaptive codec for callers that prepare
// payloads themselves (the drawing editor reuses it for raster previews).
func CompressImageAdaptive(data []byte, mimeType string, opts MediaOptions) (MediaResult, error) {
	return media.CompressAdaptive(data, mimeType, opts)
}
