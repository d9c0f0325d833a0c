// SPDX-License-Identifier: MIT
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleThumbnail serves the item's cached thumbnail from disk. Resolution
// degrades gracefully: an item without a thumbnail (no upstream image, or the
// upstream currently unreachable) answers 404 rather than an error.
func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	item, err := s.media.Get(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	path, err := s.media.Thumbnail(r.Context(), item)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if path == "" {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no thumbnail available"})
		return
	}
	http.ServeFile(w, r, path)
}
