// SPDX-License-Identifier: MIT

// Package embedurl parses, validates and assembles IBM Video Streaming
// embed URLs of the form
//
//	[scheme]video.ibm.com/embed/[recorded/]<id>[?query][#fragment]
//
// A single anchored grammar is the shared source of truth for Valid and
// Parse so the two can never disagree.
package embedurl

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// ErrInvalidFormat marks user input that does not match the embed URL grammar.
	ErrInvalidFormat = errors.New("embedurl: input does not match embed URL format")
	// ErrInvalidArgument marks a violated caller precondition (empty ID).
	ErrInvalidArgument = errors.New("embedurl: invalid argument")
)

const embedMarker = "video.ibm.com/embed/"

// pchar is the RFC 3986 path-segment character class: unreserved, sub-delims,
// ":" and "@", plus percent escapes. Query and fragment additionally allow
// "/" and "?". Hex digits in escapes match case-insensitively like the rest
// of the grammar.
const (
	pchar    = `(?:[a-z0-9\-._~!$&'()*+,;=:@]|%[0-9a-f]{2})`
	extraCls = `(?:[a-z0-9\-._~!$&'()*+,;=:@/?]|%[0-9a-f]{2})`
)

var grammar = regexp.MustCompile(
	`(?i)^(?:https?://|//)?video\.ibm\.com/embed/(recorded/)?(` + pchar + `+)(?:\?` + extraCls + `*)?(?:#` + extraCls + `*)?$`,
)

// Reference is the canonical identity of an embed target: a recorded video
// (by video ID) or a live channel (by channel ID).
type Reference struct {
	ID       string
	Recorded bool
}

// Valid reports whether the input matches the full embed URL grammar.
func Valid(embedURL string) bool {
	return grammar.MatchString(embedURL)
}

// Parse extracts the Reference from an embed URL. The ID segment is
// percent-decoded. Input that fails the grammar is rejected with
// ErrInvalidFormat.
func Parse(embedURL string) (Reference, error) {
	if embedURL == "" {
		return Reference{}, fmt.Errorf("%w: empty input", ErrInvalidFormat)
	}
	if !strings.Contains(strings.ToLower(embedURL), embedMarker) {
		return Reference{}, fmt.Errorf("%w: missing %q", ErrInvalidFormat, embedMarker)
	}
	m := grammar.FindStringSubmatch(embedURL)
	if m == nil {
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidFormat, embedURL)
	}
	id, err := url.PathUnescape(m[2])
	if err != nil || id == "" {
		return Reference{}, fmt.Errorf("%w: bad ID segment", ErrInvalidFormat)
	}
	return Reference{ID: id, Recorded: m[1] != ""}, nil
}

// Assemble builds the canonical embed URL for ref. scheme is emitted as
// given ("https://", "http://", "//" or ""). params may be nil.
func Assemble(ref Reference, scheme string, params *Parameters) (string, error) {
	if ref.ID == "" {
		return "", fmt.Errorf("%w: empty ID", ErrInvalidArgument)
	}
	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString(embedMarker)
	if ref.Recorded {
		b.WriteString("recorded/")
	}
	b.WriteString(rawEncode(ref.ID))
	if params != nil {
		b.WriteByte('?')
		b.WriteString(params.Serialize())
	}
	return b.String(), nil
}

// rawEncode percent-encodes everything outside the unreserved set, with
// space as %20 rather than "+".
func rawEncode(s string) string {
	const upperhex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0xf])
		}
	}
	return b.String()
}
