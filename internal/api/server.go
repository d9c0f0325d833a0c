// SPDX-License-Identifier: MIT

// Package api provides the gateway's HTTP surface.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/ivsgw/internal/config"
	"github.com/ManuGH/ivsgw/internal/log"
	"github.com/ManuGH/ivsgw/internal/media"
)

// Server is the HTTP API server.
type Server struct {
	cfg    config.AppConfig
	media  *media.Service
	logger zerolog.Logger
}

// New creates the server.
func New(cfg config.AppConfig, svc *media.Service) *Server {
	return &Server{
		cfg:    cfg,
		media:  svc,
		logger: log.WithComponent("api"),
	}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(countRequests)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/media", func(r chi.Router) {
		if s.cfg.RateLimitRPM > 0 {
			r.Use(httprate.Limit(s.cfg.RateLimitRPM, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		}
		r.Post("/", s.handleRegister)
		r.Get("/", s.handleList)
		r.Get("/{itemID}", s.handleGet)
		r.Put("/{itemID}", s.handleUpdate)
		r.Delete("/{itemID}", s.handleDelete)
		r.Get("/{itemID}/embed", s.handleEmbedURL)
	})

	r.Route("/thumbnails", func(r chi.Router) {
		if s.cfg.RateLimitRPM > 0 {
			r.Use(httprate.Limit(s.cfg.RateLimitRPM, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		}
		r.Get("/{itemID}", s.handleThumbnail)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
