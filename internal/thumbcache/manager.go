// SPDX-License-Identifier: MIT

// Package thumbcache resolves and caches media thumbnails on local disk.
//
// Resolution per item: check the in-memory index and the cache directory,
// on miss ask the IBM Video API for the thumbnail URI, download it, pick a
// file extension and persist atomically. Upstream trouble never fails the
// caller: a missing thumbnail must not prevent the video itself from
// rendering, so everything short of a configuration error degrades to
// "no thumbnail".
package thumbcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ManuGH/ivsgw/internal/cache"
	"github.com/ManuGH/ivsgw/internal/config"
	"github.com/ManuGH/ivsgw/internal/log"
	"github.com/ManuGH/ivsgw/internal/metrics"
)

// ErrInvalidArgument marks a violated caller precondition.
var ErrInvalidArgument = errors.New("thumbcache: invalid argument")

// Lookup is the slice of the IVS API client the cache needs.
type Lookup interface {
	ChannelThumbnailURI(ctx context.Context, channelID string) (string, error)
	VideoThumbnailURI(ctx context.Context, videoID string) (string, error)
}

// Manager owns the thumbnail cache directory.
type Manager struct {
	dir    string
	api    Lookup
	http   *http.Client
	neg    cache.TTLCache
	negTTL time.Duration
	logger zerolog.Logger

	group singleflight.Group
	index *index
}

// Option configures a Manager.
type Option func(*Manager)

// WithHTTPClient replaces the download client (tests, custom timeouts).
func WithHTTPClient(h *http.Client) Option {
	return func(m *Manager) { m.http = h }
}

// WithNegativeCache installs the cache remembering upstream "no thumbnail"
// answers, with the TTL they are remembered for.
func WithNegativeCache(c cache.TTLCache, ttl time.Duration) Option {
	return func(m *Manager) { m.neg, m.negTTL = c, ttl }
}

// New validates the cache directory, creates it if needed and returns a
// Manager. An empty or relative directory is a configuration error, fatal
// for the thumbnail path.
func New(dir string, api Lookup, opts ...Option) (*Manager, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: thumbnail directory not configured", config.ErrConfiguration)
	}
	if !filepath.IsAbs(dir) {
		return nil, fmt.Errorf("%w: thumbnail directory %q must be absolute", config.ErrConfiguration, dir)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: create thumbnail directory: %v", config.ErrConfiguration, err)
	}

	m := &Manager{
		dir:    dir,
		api:    api,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: log.WithComponent("thumbcache"),
		index:  newIndex(dir),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Resolve returns the local path of the cached thumbnail for the given item,
// fetching and persisting it on miss. An empty path with nil error means
// "no thumbnail available" (either the item has none upstream, or upstream
// is currently unreachable).
func (m *Manager) Resolve(ctx context.Context, id string, recorded bool, token string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: empty ID", ErrInvalidArgument)
	}
	if token == "" {
		return "", fmt.Errorf("%w: empty thumbnail reference", ErrInvalidArgument)
	}

	base := BaseName(id, recorded, token)

	// singleflight closes the check-then-create race: concurrent renders of
	// the same item share one resolution instead of downloading twice.
	v, err, _ := m.group.Do(base, func() (any, error) {
		return m.resolveOne(ctx, id, recorded, base), nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (m *Manager) resolveOne(ctx context.Context, id string, recorded bool, base string) string {
	logger := m.logger.With().Str("base", base).Logger()

	if path, ok := m.index.lookup(base); ok {
		metrics.IncThumbnailFetch("hit_index")
		return path
	}

	if m.neg != nil {
		if _, ok := m.neg.Get(base); ok {
			metrics.IncThumbnailFetch("negcache")
			return ""
		}
	}

	uri, err := m.lookupURI(ctx, id, recorded)
	if err != nil {
		// Transport and bad-response failures degrade to "no thumbnail";
		// nothing is persisted, so the next render retries naturally.
		logger.Warn().Err(err).Msg("upstream thumbnail lookup failed")
		metrics.IncThumbnailFetch("upstream_error")
		return ""
	}
	if uri == "" {
		logger.Debug().Msg("item has no thumbnail upstream")
		metrics.IncThumbnailFetch("no_thumbnail")
		if m.neg != nil {
			m.neg.Set(base, "", m.negTTL)
		}
		return ""
	}

	path, err := m.download(ctx, uri, base)
	if err != nil {
		logger.Warn().Err(err).Str("uri", uri).Msg("thumbnail download failed")
		metrics.IncThumbnailFetch("download_error")
		return ""
	}

	m.index.put(base, path)
	metrics.IncThumbnailFetch("downloaded")
	logger.Info().Str("path", path).Msg("thumbnail cached")
	return path
}

func (m *Manager) lookupURI(ctx context.Context, id string, recorded bool) (string, error) {
	start := time.Now()
	var (
		op  string
		uri string
		err error
	)
	if recorded {
		op = "video"
		uri, err = m.api.VideoThumbnailURI(ctx, id)
	} else {
		op = "channel"
		uri, err = m.api.ChannelThumbnailURI(ctx, id)
	}
	metrics.ObserveUpstreamRequest(op, err == nil, time.Since(start))
	return uri, err
}

// download fetches the image bytes and persists them atomically under
// <dir>/<base>.<ext>, overwriting any file of that exact name.
func (m *Manager) download(ctx context.Context, uri, base string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	res, err := m.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch: unexpected status %d", res.StatusCode)
	}

	ext := m.determineExt(ctx, uri, res.Header.Get("Content-Type"))
	dest := filepath.Join(m.dir, base+"."+ext)

	pending, err := renameio.NewPendingFile(dest)
	if err != nil {
		return "", fmt.Errorf("create pending file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			m.logger.Debug().Err(err).Msg("cleanup pending thumbnail file")
		}
	}()
	if _, err := io.Copy(pending, res.Body); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("atomically replace: %w", err)
	}
	return dest, nil
}

// determineExt picks the cache file extension: the URL path suffix when
// present, else the GET response's Content-Type, else a HEAD request's
// Content-Type, else the fixed fallback token.
func (m *Manager) determineExt(ctx context.Context, uri, getContentType string) string {
	if ext := extFromURL(uri); ext != "" {
		return ext
	}
	if ext := extFromContentType(getContentType); ext != "" {
		return ext
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, uri, nil)
	if err == nil {
		if res, err := m.http.Do(req); err == nil {
			_ = res.Body.Close()
			if ext := extFromContentType(res.Header.Get("Content-Type")); ext != "" {
				return ext
			}
		}
	}
	return fallbackExt
}
