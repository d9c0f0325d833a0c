// SPDX-License-Identifier: MIT
package thumbcache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ManuGH/ivsgw/internal/cache"
	"github.com/ManuGH/ivsgw/internal/config"
	"github.com/ManuGH/ivsgw/internal/ivsapi"
)

// imageServer serves fake thumbnail bytes and counts downloads.
func imageServer(t *testing.T, path, contentType string, body []byte) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var gets atomic.Int64
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		if r.Method == http.MethodGet {
			gets.Add(1)
			_, _ = w.Write(body)
		}
	}))
	t.Cleanup(s.Close)
	return s, &gets
}

func newManager(t *testing.T, api Lookup, opts ...Option) *Manager {
	t.Helper()
	m, err := New(t.TempDir(), api, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestResolveDownloadsAndCaches(t *testing.T) {
	img, gets := imageServer(t, "/thumb.png", "image/png", []byte("png-bytes"))
	api := ivsapi.NewMockServer()
	defer api.Close()
	api.SetChannelPicture("chan", map[string]any{"128x72": img.URL + "/thumb.png"})

	m := newManager(t, ivsapi.New(api.URL))

	path, err := m.Resolve(context.Background(), "chan", false, "tok1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if path == "" {
		t.Fatal("expected a cached path")
	}
	if filepath.Ext(path) != ".png" {
		t.Errorf("extension from URL suffix: got %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "png-bytes" {
		t.Errorf("cached content = %q, %v", data, err)
	}

	// Second resolve is served from the cache, no second download.
	again, err := m.Resolve(context.Background(), "chan", false, "tok1")
	if err != nil || again != path {
		t.Errorf("second Resolve = %q, %v; want %q", again, err, path)
	}
	if gets.Load() != 1 {
		t.Errorf("expected 1 download, got %d", gets.Load())
	}
}

func TestResolveVideoUsesDefaultThumbnail(t *testing.T) {
	img, _ := imageServer(t, "/v.jpg", "image/jpeg", []byte("jpeg"))
	api := ivsapi.NewMockServer()
	defer api.Close()
	api.SetVideoThumbnail("vid", map[string]any{"default": img.URL + "/v.jpg"})

	m := newManager(t, ivsapi.New(api.URL))
	path, err := m.Resolve(context.Background(), "vid", true, "tok")
	if err != nil || path == "" {
		t.Fatalf("Resolve = %q, %v", path, err)
	}
	if api.Calls("vid") != 1 {
		t.Errorf("expected 1 video lookup, got %d", api.Calls("vid"))
	}
}

// Changing only the token forces a fresh remote lookup even for the same ID.
func TestTokenChangeForcesRefetch(t *testing.T) {
	img, gets := imageServer(t, "/t.png", "image/png", []byte("x"))
	api := ivsapi.NewMockServer()
	defer api.Close()
	api.SetChannelPicture("chan", map[string]any{"64x64": img.URL + "/t.png"})

	m := newManager(t, ivsapi.New(api.URL))

	p1, _ := m.Resolve(context.Background(), "chan", false, "tok1")
	p2, _ := m.Resolve(context.Background(), "chan", false, "tok2")
	if p1 == "" || p2 == "" || p1 == p2 {
		t.Fatalf("expected two distinct cache files, got %q and %q", p1, p2)
	}
	if gets.Load() != 2 {
		t.Errorf("expected 2 downloads, got %d", gets.Load())
	}
	if api.Calls("chan") != 2 {
		t.Errorf("expected 2 remote lookups, got %d", api.Calls("chan"))
	}
}

// Upstream trouble degrades to "no thumbnail", never an error.
func TestUpstreamFailureDegrades(t *testing.T) {
	api := ivsapi.NewMockServer()
	defer api.Close()
	api.ForceStatus(http.StatusBadGateway)

	m := newManager(t, ivsapi.New(api.URL))
	path, err := m.Resolve(context.Background(), "chan", false, "tok")
	if err != nil {
		t.Fatalf("upstream failure must not surface: %v", err)
	}
	if path != "" {
		t.Errorf("expected no thumbnail, got %q", path)
	}
}

func TestNoRemoteThumbnailIsNegativelyCached(t *testing.T) {
	api := ivsapi.NewMockServer()
	defer api.Close()
	api.SetChannelPicture("chan", nil) // channel exists, no picture

	neg := cache.NewMemory(0)
	defer neg.Close()
	m := newManager(t, ivsapi.New(api.URL), WithNegativeCache(neg, time.Minute))

	for i := 0; i < 3; i++ {
		path, err := m.Resolve(context.Background(), "chan", false, "tok")
		if err != nil || path != "" {
			t.Fatalf("Resolve = %q, %v", path, err)
		}
	}
	if api.Calls("chan") != 1 {
		t.Errorf("negative cache should stop repeat lookups, got %d calls", api.Calls("chan"))
	}
}

func TestFailedDownloadDegrades(t *testing.T) {
	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer img.Close()
	api := ivsapi.NewMockServer()
	defer api.Close()
	api.SetChannelPicture("chan", map[string]any{"64x64": img.URL + "/x.png"})

	m := newManager(t, ivsapi.New(api.URL))
	path, err := m.Resolve(context.Background(), "chan", false, "tok")
	if err != nil || path != "" {
		t.Errorf("failed download should degrade: %q, %v", path, err)
	}
	// Nothing persisted, so the next render retries.
	entries, _ := os.ReadDir(m.dir)
	if len(entries) != 0 {
		t.Errorf("no file should be written on failed download, found %d", len(entries))
	}
}

func TestExtensionFromContentType(t *testing.T) {
	img, _ := imageServer(t, "/noext", "image/webp", []byte("webp"))
	api := ivsapi.NewMockServer()
	defer api.Close()
	api.SetChannelPicture("chan", map[string]any{"64x64": img.URL + "/noext"})

	m := newManager(t, ivsapi.New(api.URL))
	path, err := m.Resolve(context.Background(), "chan", false, "tok")
	if err != nil || path == "" {
		t.Fatalf("Resolve = %q, %v", path, err)
	}
	if filepath.Ext(path) != ".webp" {
		t.Errorf("expected .webp from Content-Type, got %q", path)
	}
}

func TestExtensionFallbackToken(t *testing.T) {
	img, _ := imageServer(t, "/noext", "application/octet-stream", []byte("??"))
	api := ivsapi.NewMockServer()
	defer api.Close()
	api.SetChannelPicture("chan", map[string]any{"64x64": img.URL + "/noext"})

	m := newManager(t, ivsapi.New(api.URL))
	path, err := m.Resolve(context.Background(), "chan", false, "tok")
	if err != nil || path == "" {
		t.Fatalf("Resolve = %q, %v", path, err)
	}
	if filepath.Ext(path) != "."+fallbackExt {
		t.Errorf("expected fallback extension, got %q", path)
	}
}

// A file left by an earlier process is found by the lazy directory scan.
func TestExistingFilePickedUpByScan(t *testing.T) {
	dir := t.TempDir()
	base := BaseName("chan", false, "tok")
	want := filepath.Join(dir, base+".png")
	if err := os.WriteFile(want, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}

	api := ivsapi.NewMockServer()
	defer api.Close()
	m, err := New(dir, ivsapi.New(api.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	path, err := m.Resolve(context.Background(), "chan", false, "tok")
	if err != nil || path != want {
		t.Errorf("Resolve = %q, %v; want %q", path, err, want)
	}
	if api.Calls("chan") != 0 {
		t.Errorf("cache hit must not call upstream, got %d calls", api.Calls("chan"))
	}
}

func TestConcurrentResolveDownloadsOnce(t *testing.T) {
	img, gets := imageServer(t, "/t.png", "image/png", []byte("x"))
	api := ivsapi.NewMockServer()
	defer api.Close()
	api.SetChannelPicture("chan", map[string]any{"64x64": img.URL + "/t.png"})

	m := newManager(t, ivsapi.New(api.URL))

	var wg sync.WaitGroup
	paths := make([]string, 8)
	for i := 0; i < len(paths); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := m.Resolve(context.Background(), "chan", false, "tok")
			if err != nil {
				t.Errorf("Resolve: %v", err)
			}
			paths[i] = p
		}(i)
	}
	wg.Wait()

	for _, p := range paths {
		if p == "" || p != paths[0] {
			t.Fatalf("inconsistent paths: %v", paths)
		}
	}
	if gets.Load() != 1 {
		t.Errorf("singleflight should collapse to 1 download, got %d", gets.Load())
	}
}

func TestResolvePreconditions(t *testing.T) {
	api := ivsapi.NewMockServer()
	defer api.Close()
	m := newManager(t, ivsapi.New(api.URL))

	if _, err := m.Resolve(context.Background(), "", false, "tok"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty ID: got %v", err)
	}
	if _, err := m.Resolve(context.Background(), "chan", false, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty token: got %v", err)
	}
}

func TestNewRejectsBadDirectory(t *testing.T) {
	api := ivsapi.NewMockServer()
	defer api.Close()

	if _, err := New("", ivsapi.New(api.URL)); !errors.Is(err, config.ErrConfiguration) {
		t.Errorf("empty dir: got %v", err)
	}
	if _, err := New("relative/dir", ivsapi.New(api.URL)); !errors.Is(err, config.ErrConfiguration) {
		t.Errorf("relative dir: got %v", err)
	}
}
