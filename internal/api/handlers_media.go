// SPDX-License-Identifier: MIT
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/ivsgw/internal/embedurl"
	"github.com/ManuGH/ivsgw/internal/media"
)

type mediaRequest struct {
	EmbedURL string `json:"embed_url"`
}

type mediaResponse struct {
	ID        string    `json:"id"`
	MediaID   string    `json:"media_id"`
	Recorded  bool      `json:"recorded"`
	EmbedURL  string    `json:"embed_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Server) toResponse(item media.Item) (mediaResponse, error) {
	canonical, err := s.media.EmbedURL(item, "https://", nil)
	if err != nil {
		return mediaResponse{}, err
	}
	return mediaResponse{
		ID:        item.ID,
		MediaID:   item.Record.ID,
		Recorded:  item.Record.Recorded,
		EmbedURL:  canonical,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}, nil
}

func decodeMediaRequest(r *http.Request) (mediaRequest, error) {
	var req mediaRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return mediaRequest{}, fmt.Errorf("%w: invalid request body", embedurl.ErrInvalidArgument)
	}
	if req.EmbedURL == "" {
		return mediaRequest{}, fmt.Errorf("%w: embed_url is required", embedurl.ErrInvalidArgument)
	}
	return req, nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, err := decodeMediaRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := s.media.Register(r.Context(), req.EmbedURL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := s.toResponse(item)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeMediaRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := s.media.Update(r.Context(), chi.URLParam(r, "itemID"), req.EmbedURL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := s.toResponse(item)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	item, err := s.media.Get(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := s.toResponse(item)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.media.Delete(r.Context(), chi.URLParam(r, "itemID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := s.media.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resps := make([]mediaResponse, 0, len(items))
	for _, item := range items {
		resp, err := s.toResponse(item)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resps = append(resps, resp)
	}
	writeJSON(w, http.StatusOK, resps)
}

// handleEmbedURL renders the item's embed URL with player parameters taken
// from the query string, falling back to the player defaults.
func (s *Server) handleEmbedURL(w http.ResponseWriter, r *http.Request) {
	item, err := s.media.Get(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	scheme, err := schemeFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	params, err := paramsFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rendered, err := s.media.EmbedURL(item, scheme, &params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"embed_url": rendered})
}

func schemeFromQuery(r *http.Request) (string, error) {
	switch v := r.URL.Query().Get("scheme"); v {
	case "", "https":
		return "https://", nil
	case "http":
		return "http://", nil
	case "relative":
		return "//", nil
	default:
		return "", fmt.Errorf("%w: unknown scheme %q", embedurl.ErrInvalidArgument, v)
	}
}

func paramsFromQuery(r *http.Request) (embedurl.Parameters, error) {
	params := embedurl.DefaultParameters()
	q := r.URL.Query()

	if v := q.Get("volume"); v != "" {
		vol, err := strconv.Atoi(v)
		if err != nil {
			return params, fmt.Errorf("%w: volume must be an integer", embedurl.ErrInvalidArgument)
		}
		params.InitialVolume = vol
	}
	for name, target := range map[string]*bool{
		"showtitle": &params.ShowTitle,
		"autoplay":  &params.UseAutoplay,
		"html5ui":   &params.UseHTML5UI,
		"controls":  &params.DisplayControls,
	} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return params, fmt.Errorf("%w: %s must be a boolean", embedurl.ErrInvalidArgument, name)
			}
			*target = b
		}
	}
	if v := q.Get("quality"); v != "" {
		switch v {
		case "low":
			params.DefaultQuality = embedurl.QualityLow
		case "medium":
			params.DefaultQuality = embedurl.QualityMedium
		case "high":
			params.DefaultQuality = embedurl.QualityHigh
		default:
			return params, fmt.Errorf("%w: unknown quality %q", embedurl.ErrInvalidArgument, v)
		}
	}
	if v := q.Get("wmode"); v != "" {
		switch v {
		case "direct":
			params.WMode = embedurl.WModeDirect
		case "opaque":
			params.WMode = embedurl.WModeOpaque
		case "transparent":
			params.WMode = embedurl.WModeTransparent
		case "window":
			params.WMode = embedurl.WModeWindow
		default:
			return params, fmt.Errorf("%w: unknown wmode %q", embedurl.ErrInvalidArgument, v)
		}
	}
	return params, nil
}
