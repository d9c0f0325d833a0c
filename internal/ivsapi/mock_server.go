// SPDX-License-Identifier: MIT
package ivsapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockServer is a configurable IBM Video Streaming API mock for tests.
type MockServer struct {
	*httptest.Server
	mu       sync.RWMutex
	channels map[string]any // channelID -> picture value
	videos   map[string]any // videoID -> thumbnail value
	status   int            // forced status code, 0 = normal handling
	rawBody  string         // forced raw body, "" = normal handling
	calls    map[string]int
}

// NewMockServer creates a mock serving the channel and video lookup routes.
func NewMockServer() *MockServer {
	m := &MockServer{
		channels: make(map[string]any),
		videos:   make(map[string]any),
		calls:    make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/channels/", m.handleChannel)
	mux.HandleFunc("/videos/", m.handleVideo)
	m.Server = httptest.NewServer(mux)
	return m
}

// SetChannelPicture installs the picture value returned for a channel.
func (m *MockServer) SetChannelPicture(channelID string, picture any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[channelID] = picture
}

// SetVideoThumbnail installs the thumbnail value returned for a video.
func (m *MockServer) SetVideoThumbnail(videoID string, thumbnail any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videos[videoID] = thumbnail
}

// ForceStatus makes every response use the given status code.
func (m *MockServer) ForceStatus(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = code
}

// ForceBody makes every response return the given raw body with status 200.
func (m *MockServer) ForceBody(body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawBody = body
}

// Calls returns how often the given id was looked up across both routes.
func (m *MockServer) Calls(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[id]
}

func (m *MockServer) handleChannel(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/channels/"), ".json")
	m.mu.Lock()
	m.calls[id]++
	m.mu.Unlock()
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.intercept(w) {
		return
	}
	picture, ok := m.channels[id]
	if !ok {
		http.NotFound(w, r)
		return
	}
	inner := map[string]any{}
	if picture != nil {
		inner["picture"] = picture
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"channel": inner})
}

func (m *MockServer) handleVideo(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/videos/"), ".json")
	m.mu.Lock()
	m.calls[id]++
	m.mu.Unlock()
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.intercept(w) {
		return
	}
	thumbnail, ok := m.videos[id]
	if !ok {
		http.NotFound(w, r)
		return
	}
	inner := map[string]any{}
	if thumbnail != nil {
		inner["thumbnail"] = thumbnail
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"video": inner})
}

func (m *MockServer) intercept(w http.ResponseWriter) bool {
	if m.status != 0 {
		http.Error(w, http.StatusText(m.status), m.status)
		return true
	}
	if m.rawBody != "" {
		_, _ = w.Write([]byte(m.rawBody))
		return true
	}
	return false
}
