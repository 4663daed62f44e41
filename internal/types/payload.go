package types

import (
	"encoding/json"
	"strings"
)

// The gateway stores every text-kind entry as a single string. Drawings,
// photos and note references ride inside that string behind a small set of
// legacy prefixes which must be preserved byte-for-byte on the wire:
//
//	DRAWING:<data-url>
//	PHOTO:<data-url>
//	PHOTOS:<json-array>     (or a comma-joined list, older clients)
//	NOTE:<slug>:<publicCode>:<title>
//
// Internally the SDK decodes the string once into a Payload sum type and
// only re-encodes at the gateway boundary.

// PayloadKind discriminates the Payload union.
type PayloadKind int

const (
	PayloadText PayloadKind = iota
	PayloadDrawing
	PayloadPhoto
	PayloadPhotoSet
	PayloadNoteRef
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadText:
		return "text"
	case PayloadDrawing:
		return "drawing"
	case PayloadPhoto:
		return "photo"
	case PayloadPhotoSet:
		return "photoset"
	case PayloadNoteRef:
		return "noteref"
	default:
		return "unknown"
	}
}

const (
	drawingPrefix = "DRAWING:"
	photoPrefix   = "PHOTO:"
	photosPrefix  = "PHOTOS:"
	notePrefix    = "NOTE:"
)

// NoteRef identifies the note projected from an entry.
type NoteRef struct {
	Slug       string
	PublicCode string
	Title      string
}

// Payload is the decoded form of an entry's text field. Exactly the fields
// relevant to Kind are populated.
type Payload struct {
	Kind   PayloadKind
	Text   string   // PayloadText
	Data   string   // PayloadDrawing, PayloadPhoto: encoded image data
	Photos []string // PayloadPhotoSet
	Note   NoteRef  // PayloadNoteRef
}

// DecodePayload parses the wire string into the union. Unrecognized or
// malformed tagged strings fall back to plain text so a bad record never
// breaks rendering.
func DecodePayload(text string) Payload {
	switch {
	case strings.HasPrefix(text, drawingPrefix):
		return Payload{Kind: PayloadDrawing, Data: text[len(drawingPrefix):]}

	case strings.HasPrefix(text, photosPrefix):
		raw := text[len(photosPrefix):]
		var photos []string
		if err := json.Unmarshal([]byte(raw), &photos); err != nil {
			// Comma-joined fallback written by older clients.
			photos = strings.Split(raw, ",")
		}
		return Payload{Kind: PayloadPhotoSet, Photos: photos}

	case strings.HasPrefix(text, photoPrefix):
		return Payload{Kind: PayloadPhoto, Data: text[len(photoPrefix):]}

	case strings.HasPrefix(text, notePrefix):
		// NOTE:<slug>:<publicCode>:<title>; the title may itself contain
		// colons, so split at most three ways.
		parts := strings.SplitN(text[len(notePrefix):], ":", 3)
		if len(parts) < 2 {
			return Payload{Kind: PayloadText, Text: text}
		}
		ref := NoteRef{Slug: parts[0], PublicCode: parts[1]}
		if len(parts) == 3 {
			ref.Title = parts[2]
		}
		return Payload{Kind: PayloadNoteRef, Note: ref}

	default:
		return Payload{Kind: PayloadText, Text: text}
	}
}

// Encode renders the payload back into its wire string. PhotoSet always
// encodes as a JSON array; the comma-joined form is read-only compatibility.
func (p Payload) Encode() string {
	switch p.Kind {
	case PayloadDrawing:
		return drawingPrefix + p.Data
	case PayloadPhoto:
		return photoPrefix + p.Data
	case PayloadPhotoSet:
		b, _ := json.Marshal(p.Photos)
		return photosPrefix + string(b)
	case PayloadNoteRef:
		return notePrefix + p.Note.Slug + ":" + p.Note.PublicCode + ":" + p.Note.Title
	default:
		return p.Text
	}
}

// NoteSlugOf extracts the slug when text carries a NOTE payload. Lookups
// locate a note's owning entry by matching NOTE:<slug>: against this field.
func NoteSlugOf(text string) (string, bool) {
	p := DecodePayload(text)
	if p.Kind != PayloadNoteRef {
		return "", false
	}
	return p.Note.Slug, true
}
