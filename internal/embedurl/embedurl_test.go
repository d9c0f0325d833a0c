// SPDX-License-Identifier: MIT
package embedurl

import "testing"

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"recorded_no_scheme", "video.ibm.com/embed/recorded/abc", true},
		{"channel_https", "https://video.ibm.com/embed/mychannel", true},
		{"channel_http", "http://video.ibm.com/embed/mychannel", true},
		{"scheme_relative", "//video.ibm.com/embed/recorded/123", true},
		{"uppercase_domain", "HTTPS://VIDEO.IBM.COM/EMBED/RECORDED/abc", true},
		{"with_query", "video.ibm.com/embed/recorded/abc?autoplay=true", true},
		{"with_fragment", "video.ibm.com/embed/abc#player", true},
		{"query_and_fragment", "video.ibm.com/embed/abc?a=1#f", true},
		{"second_question_mark_in_query", "video.ibm.com/embed/abc?a=1?b=2", true},
		{"percent_escape_in_id", "video.ibm.com/embed/recorded/a%2Fb", true},
		{"sub_delims_in_id", "video.ibm.com/embed/a!$&'()*+,;=:@b", true},
		{"empty", "", false},
		{"empty_id", "video.ibm.com/embed/", false},
		{"empty_id_recorded", "video.ibm.com/embed/recorded/", false},
		{"wrong_scheme", "ftp://video.ibm.com/embed/abc", false},
		{"wrong_domain", "video.example.com/embed/abc", false},
		{"slash_in_id", "video.ibm.com/embed/a/b", false},
		{"space_in_id", "video.ibm.com/embed/a b", false},
		{"truncated_escape", "video.ibm.com/embed/a%2", false},
		{"trailing_garbage_before_marker", "evil.com/video.ibm.com/embed/abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Valid(tt.in); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		in           string
		wantID       string
		wantRecorded bool
		wantErr      bool
	}{
		{"recorded", "https://video.ibm.com/embed/recorded/XyZ123?foo=bar", "XyZ123", true, false},
		{"channel", "https://video.ibm.com/embed/mychannel", "mychannel", false, false},
		{"no_scheme", "video.ibm.com/embed/recorded/abc", "abc", true, false},
		{"percent_decoded", "video.ibm.com/embed/recorded/a%2Fb", "a/b", true, false},
		{"fragment_truncates", "video.ibm.com/embed/chan#top", "chan", false, false},
		{"empty", "", "", false, true},
		{"no_marker", "https://example.com/watch?v=abc", "", false, true},
		{"empty_id", "video.ibm.com/embed/", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := Parse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %+v", tt.in, ref)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.in, err)
			}
			if ref.ID != tt.wantID || ref.Recorded != tt.wantRecorded {
				t.Errorf("Parse(%q) = %+v, want id=%q recorded=%v", tt.in, ref, tt.wantID, tt.wantRecorded)
			}
		})
	}
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name   string
		ref    Reference
		scheme string
		want   string
	}{
		{"recorded_scheme_relative", Reference{ID: "XyZ123", Recorded: true}, "//", "//video.ibm.com/embed/recorded/XyZ123"},
		{"channel_https", Reference{ID: "mychannel"}, "https://", "https://video.ibm.com/embed/mychannel"},
		{"no_scheme", Reference{ID: "abc", Recorded: true}, "", "video.ibm.com/embed/recorded/abc"},
		{"id_needing_escape", Reference{ID: "a b/c"}, "", "video.ibm.com/embed/a%20b%2Fc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Assemble(tt.ref, tt.scheme, nil)
			if err != nil {
				t.Fatalf("Assemble() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Assemble() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := Assemble(Reference{}, "https://", nil); err == nil {
		t.Error("Assemble() with empty ID should fail")
	}
}

// Round-trip: assemble with empty scheme then parse reproduces the reference.
func TestRoundTrip(t *testing.T) {
	refs := []Reference{
		{ID: "XyZ123", Recorded: true},
		{ID: "mychannel", Recorded: false},
		{ID: "with space", Recorded: true},
		{ID: "sub!$&'()*+,;=:@delims", Recorded: false},
	}
	for _, ref := range refs {
		u, err := Assemble(ref, "", nil)
		if err != nil {
			t.Fatalf("Assemble(%+v): %v", ref, err)
		}
		if !Valid(u) {
			t.Errorf("assembled URL %q not Valid", u)
		}
		back, err := Parse(u)
		if err != nil {
			t.Fatalf("Parse(%q): %v", u, err)
		}
		if back != ref {
			t.Errorf("round trip %+v -> %q -> %+v", ref, u, back)
		}
	}
}
