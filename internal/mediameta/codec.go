// SPDX-License-Identifier: MIT

// Package mediameta serializes the persisted media field value: a small JSON
// object holding the embed reference and the thumbnail cache token. The
// structural parse (key set) and the semantic field validation are separate
// stages so a single bad field yields a field-specific error instead of a
// blanket parse failure.
package mediameta

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ManuGH/ivsgw/internal/embedurl"
)

var (
	// ErrInvalidArgument marks a violated caller precondition.
	ErrInvalidArgument = errors.New("mediameta: invalid argument")
	// ErrBadJSON marks a stored value that is not a JSON object at all.
	ErrBadJSON = errors.New("mediameta: stored value is not valid JSON")
	// ErrInvalidKeySet marks a parsed object whose keys do not exactly match the schema.
	ErrInvalidKeySet = errors.New("mediameta: stored value has wrong key set")
)

// Canonical key set of the persisted record. Exactly these keys must be
// present on read; more or fewer is a schema error.
const (
	KeyID           = "id"
	KeyIsRecorded   = "is_recorded"
	KeyThumbnailRef = "thumbnail_reference_id"
)

// Record is the validated form of the persisted field value.
type Record struct {
	ID           string
	Recorded     bool
	ThumbnailRef string
}

// Reference returns the embed reference carried by the record.
func (r Record) Reference() embedurl.Reference {
	return embedurl.Reference{ID: r.ID, Recorded: r.Recorded}
}

// Serialize produces the canonical JSON form. Both the ID and the thumbnail
// reference token must be non-empty; mint the token with NewThumbnailRef
// before serializing a fresh record.
func Serialize(ref embedurl.Reference, thumbnailRef string) (string, error) {
	if ref.ID == "" {
		return "", fmt.Errorf("%w: empty ID", ErrInvalidArgument)
	}
	if thumbnailRef == "" {
		return "", fmt.Errorf("%w: empty thumbnail reference", ErrInvalidArgument)
	}
	raw, err := json.Marshal(map[string]any{
		KeyID:           ref.ID,
		KeyIsRecorded:   ref.Recorded,
		KeyThumbnailRef: thumbnailRef,
	})
	if err != nil {
		return "", fmt.Errorf("mediameta: marshal: %w", err)
	}
	return string(raw), nil
}

// TryDeserialize performs the structural parse only: the raw string must be a
// JSON object with exactly the canonical key set. Values come back
// unvalidated; run Validate before using them.
func TryDeserialize(raw string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil || m == nil {
		return nil, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	if len(m) != 3 {
		return nil, fmt.Errorf("%w: got %d keys", ErrInvalidKeySet, len(m))
	}
	for _, k := range []string{KeyID, KeyIsRecorded, KeyThumbnailRef} {
		if _, ok := m[k]; !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrInvalidKeySet, k)
		}
	}
	return m, nil
}

// Validate performs the semantic stage on a structurally parsed map:
// each field's type and content is checked with a field-specific error.
func Validate(m map[string]any) (Record, error) {
	id, ok := m[KeyID].(string)
	if !ok || id == "" {
		return Record{}, fmt.Errorf("mediameta: field %q must be a non-empty string", KeyID)
	}
	recorded, ok := m[KeyIsRecorded].(bool)
	if !ok {
		return Record{}, fmt.Errorf("mediameta: field %q must be a boolean", KeyIsRecorded)
	}
	ref, ok := m[KeyThumbnailRef].(string)
	if !ok || ref == "" {
		return Record{}, fmt.Errorf("mediameta: field %q must be a non-empty string", KeyThumbnailRef)
	}
	return Record{ID: id, Recorded: recorded, ThumbnailRef: ref}, nil
}

// Deserialize runs both stages.
func Deserialize(raw string) (Record, error) {
	m, err := TryDeserialize(raw)
	if err != nil {
		return Record{}, err
	}
	return Validate(m)
}

// NewThumbnailRef mints a fresh opaque cache-invalidation token: 8 bytes from
// a CSPRNG, base64url encoded so it is filesystem and URL safe.
func NewThumbnailRef() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand.Read only fails when the OS entropy source is broken.
		panic(fmt.Sprintf("mediameta: entropy source unavailable: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
