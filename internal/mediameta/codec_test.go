// SPDX-License-Identifier: MIT
package mediameta

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ManuGH/ivsgw/internal/embedurl"
)

func TestSerialize(t *testing.T) {
	raw, err := Serialize(embedurl.Reference{ID: "XyZ123", Recorded: true}, "tok12345")
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(m) != 3 {
		t.Fatalf("expected exactly 3 keys, got %d: %v", len(m), m)
	}
	if m["id"] != "XyZ123" || m["is_recorded"] != true || m["thumbnail_reference_id"] != "tok12345" {
		t.Errorf("unexpected payload: %v", m)
	}
}

func TestSerializePreconditions(t *testing.T) {
	if _, err := Serialize(embedurl.Reference{}, "tok"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty ID: got %v, want ErrInvalidArgument", err)
	}
	if _, err := Serialize(embedurl.Reference{ID: "x"}, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty token: got %v, want ErrInvalidArgument", err)
	}
}

func TestTryDeserialize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"valid", `{"id":"x","is_recorded":true,"thumbnail_reference_id":"t"}`, nil},
		{"not_json", `not json`, ErrBadJSON},
		{"json_scalar", `42`, ErrBadJSON},
		{"json_null", `null`, ErrBadJSON},
		{"missing_key", `{"id":"x","is_recorded":true}`, ErrInvalidKeySet},
		{"extra_key", `{"id":"x","is_recorded":true,"thumbnail_reference_id":"t","extra":1}`, ErrInvalidKeySet},
		{"wrong_key_name", `{"id":"x","isRecorded":true,"thumbnail_reference_id":"t"}`, ErrInvalidKeySet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TryDeserialize(tt.raw)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// Structural parse must not validate field content; that is Validate's job.
func TestStructuralParseReturnsUnvalidatedValues(t *testing.T) {
	m, err := TryDeserialize(`{"id":"","is_recorded":"yes","thumbnail_reference_id":42}`)
	if err != nil {
		t.Fatalf("TryDeserialize should accept well-keyed object: %v", err)
	}
	if _, err := Validate(m); err == nil {
		t.Error("Validate should reject bad field values")
	}
}

func TestValidateFieldErrors(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{"id": "x", "is_recorded": true, "thumbnail_reference_id": "t"}
	}

	if rec, err := Validate(base()); err != nil || rec.ID != "x" || !rec.Recorded || rec.ThumbnailRef != "t" {
		t.Fatalf("Validate(valid) = %+v, %v", rec, err)
	}

	m := base()
	m["id"] = ""
	if _, err := Validate(m); err == nil {
		t.Error("empty id should fail validation")
	}
	m = base()
	m["is_recorded"] = "true"
	if _, err := Validate(m); err == nil {
		t.Error("string is_recorded should fail validation")
	}
	m = base()
	m["thumbnail_reference_id"] = ""
	if _, err := Validate(m); err == nil {
		t.Error("empty token should fail validation")
	}
}

func TestRoundTrip(t *testing.T) {
	tok := NewThumbnailRef()
	raw, err := Serialize(embedurl.Reference{ID: "chan", Recorded: false}, tok)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	rec, err := Deserialize(raw)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if rec.ID != "chan" || rec.Recorded || rec.ThumbnailRef != tok {
		t.Errorf("round trip mismatch: %+v", rec)
	}
}

func TestNewThumbnailRef(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		tok := NewThumbnailRef()
		if tok == "" {
			t.Fatal("empty token")
		}
		if seen[tok] {
			t.Fatalf("token collision: %q", tok)
		}
		seen[tok] = true
	}
}
