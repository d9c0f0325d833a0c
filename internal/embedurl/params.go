// SPDX-License-Identifier: MIT

package embedurl

import (
	"net/url"
	"strconv"
	"strings"
)

// Quality is the player's initial quality preference.
type Quality int

const (
	QualityUnspecified Quality = iota
	QualityLow
	QualityMedium
	QualityHigh
)

func (q Quality) String() string {
	switch q {
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	default:
		return ""
	}
}

// WMode is the legacy Flash window-mode parameter still accepted by the player.
type WMode int

const (
	WModeUnspecified WMode = iota
	WModeDirect
	WModeOpaque
	WModeTransparent
	WModeWindow
)

func (w WMode) String() string {
	switch w {
	case WModeDirect:
		return "direct"
	case WModeOpaque:
		return "opaque"
	case WModeTransparent:
		return "transparent"
	case WModeWindow:
		return "window"
	default:
		return ""
	}
}

// Parameters is the optional playback-configuration bag serialized into an
// embed URL's query string. It is built fresh per render and never persisted.
type Parameters struct {
	InitialVolume   int // 0..100
	ShowTitle       bool
	UseAutoplay     bool
	UseHTML5UI      bool
	DefaultQuality  Quality
	WMode           WMode
	DisplayControls bool
}

// DefaultParameters returns the player defaults used when a caller supplies
// no explicit settings.
func DefaultParameters() Parameters {
	return Parameters{
		InitialVolume:   100,
		ShowTitle:       true,
		UseAutoplay:     false,
		UseHTML5UI:      true,
		DisplayControls: true,
	}
}

// Serialize renders the bag as a query string. Key order is fixed, booleans
// serialize as "true"/"false" except html5ui which the player documents as
// "1"/"0". Unspecified enum values are omitted entirely, never emitted as
// empty values.
func (p Parameters) Serialize() string {
	vol := p.InitialVolume
	if vol < 0 {
		vol = 0
	} else if vol > 100 {
		vol = 100
	}

	pairs := make([]string, 0, 7)
	add := func(key, value string) {
		pairs = append(pairs, key+"="+url.QueryEscape(value))
	}
	add("volume", strconv.Itoa(vol))
	add("showtitle", strconv.FormatBool(p.ShowTitle))
	add("autoplay", strconv.FormatBool(p.UseAutoplay))
	if p.UseHTML5UI {
		add("html5ui", "1")
	} else {
		add("html5ui", "0")
	}
	if q := p.DefaultQuality.String(); q != "" {
		add("quality", q)
	}
	if w := p.WMode.String(); w != "" {
		add("wmode", w)
	}
	add("controls", strconv.FormatBool(p.DisplayControls))
	return strings.Join(pairs, "&")
}
