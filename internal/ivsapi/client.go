// SPDX-License-Identifier: MIT

// Package ivsapi is a read-only client for the IBM Video Streaming REST API.
// It issues the two thumbnail lookups the gateway needs and inspects status
// codes explicitly instead of treating non-2xx as a thrown transport failure.
package ivsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBase is the production API endpoint.
const DefaultBase = "https://api.video.ibm.com"

// Client talks to the IBM Video Streaming API.
type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Timeouts surface as ErrTransport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimit bounds outbound request rate.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// New creates a client against the given API base URL (DefaultBase in
// production, an httptest server in tests).
func New(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChannelThumbnailURI returns the URI of the channel's largest configured
// thumbnail, or "" when the channel has none. A channel with no thumbnail is
// a success, not an error.
func (c *Client) ChannelThumbnailURI(ctx context.Context, channelID string) (string, error) {
	const op = "channel thumbnail lookup"
	if channelID == "" {
		return "", fmt.Errorf("%w: empty channel ID", ErrInvalidArgument)
	}
	body, err := c.getJSON(ctx, op, "/channels/"+url.PathEscape(channelID)+".json")
	if err != nil {
		return "", err
	}
	channel, ok := body["channel"].(map[string]any)
	if !ok {
		return "", badResponseErr(op, 0, fmt.Errorf("missing channel envelope"))
	}
	return pickLargest(op, channel["picture"])
}

// VideoThumbnailURI returns the video's default thumbnail URI, or "" when the
// video has none.
func (c *Client) VideoThumbnailURI(ctx context.Context, videoID string) (string, error) {
	const op = "video thumbnail lookup"
	if videoID == "" {
		return "", fmt.Errorf("%w: empty video ID", ErrInvalidArgument)
	}
	body, err := c.getJSON(ctx, op, "/videos/"+url.PathEscape(videoID)+".json")
	if err != nil {
		return "", err
	}
	video, ok := body["video"].(map[string]any)
	if !ok {
		return "", badResponseErr(op, 0, fmt.Errorf("missing video envelope"))
	}
	thumbs, err := thumbnailMap(op, video["thumbnail"])
	if err != nil || thumbs == nil {
		return "", err
	}
	uri, _ := thumbs["default"].(string)
	return uri, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string) (map[string]any, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, transportErr(op, err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, transportErr(op, err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, transportErr(op, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return nil, badResponseErr(op, res.StatusCode, nil)
	}

	var body map[string]any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil || body == nil {
		return nil, badResponseErr(op, res.StatusCode, fmt.Errorf("body is not a JSON object: %v", err))
	}
	return body, nil
}

// thumbnailMap validates the loosely specified thumbnail value. A missing,
// null or empty value means "no thumbnail configured" and maps to (nil, nil);
// any other non-map shape is a malformed response.
func thumbnailMap(op string, v any) (map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, badResponseErr(op, 0, fmt.Errorf("thumbnail value is %T, expected object", v))
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}

// pickLargest selects the URI with the largest pixel area among size-labeled
// ("<width>x<height>") thumbnails. Malformed labels are skipped, but the
// first-seen URI is kept as a fallback so oddly labeled data still yields a
// result.
func pickLargest(op string, v any) (string, error) {
	thumbs, err := thumbnailMap(op, v)
	if err != nil || thumbs == nil {
		return "", err
	}

	// Sorted labels keep selection deterministic; Go map order is not.
	labels := make([]string, 0, len(thumbs))
	for label := range thumbs {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var best string
	bestArea := -1
	var fallback string
	for _, label := range labels {
		uri, ok := thumbs[label].(string)
		if !ok {
			return "", badResponseErr(op, 0, fmt.Errorf("thumbnail entry %q is %T, expected string", label, thumbs[label]))
		}
		if fallback == "" {
			fallback = uri
		}
		area, ok := parseArea(label)
		if !ok {
			continue
		}
		if area > bestArea {
			bestArea = area
			best = uri
		}
	}
	if best == "" {
		return fallback, nil
	}
	return best, nil
}

func parseArea(label string) (int, bool) {
	w, h, ok := strings.Cut(label, "x")
	if !ok {
		return 0, false
	}
	width, err := strconv.Atoi(w)
	if err != nil || width < 0 {
		return 0, false
	}
	height, err := strconv.Atoi(h)
	if err != nil || height < 0 {
		return 0, false
	}
	return width * height, true
}
