// Package server exposes stored crawl runs, disclosure listings, and
// extracted company profiles over a small read-only JSON API.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nemusake/tdnet-downloader/internal/store"
	"github.com/nemusake/tdnet-downloader/internal/tdnet"
	"github.com/nemusake/tdnet-downloader/internal/xbrl"
)

// Server serves persisted crawl results.
type Server struct {
	store  store.Store
	router chi.Router
}

// New creates a Server with all routes and middleware configured.
func New(st store.Store) *Server {
	s := &Server{store: st}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router, used directly by tests.
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// The API is read-only, so any origin may GET.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/runs", s.handleRuns)
		r.Get("/disclosures", s.handleDisclosures)
		r.Get("/profiles", s.handleProfiles)
	})

	return r
}

// Run serves on addr until the context is cancelled, then drains
// in-flight requests before returning.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	zap.L().Info("server listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server: listen")
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

// apiResponse is the JSON envelope for every endpoint.
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Data:    map[string]string{"status": "ok"},
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	var filter store.RunFilter

	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := tdnet.CanonicalDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYYMMDD, YYYY-MM-DD, or YYYY/MM/DD")
			return
		}
		filter.Date = date
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	if runs == nil {
		runs = []store.CrawlRun{}
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: runs})
}

func (s *Server) handleDisclosures(w http.ResponseWriter, r *http.Request) {
	date, ok := requireDate(w, r)
	if !ok {
		return
	}

	items, err := s.store.ListDisclosures(r.Context(), date)
	if err != nil {
		zap.L().Error("list disclosures failed", zap.String("date", date), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list disclosures failed")
		return
	}
	if items == nil {
		items = []tdnet.Disclosure{}
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: items})
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	date, ok := requireDate(w, r)
	if !ok {
		return
	}

	profiles, err := s.store.ListProfiles(r.Context(), date)
	if err != nil {
		zap.L().Error("list profiles failed", zap.String("date", date), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list profiles failed")
		return
	}
	if profiles == nil {
		profiles = []xbrl.Profile{}
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: profiles})
}

// requireDate reads and canonicalizes the mandatory date query
// parameter, writing the error response itself when absent or invalid.
func requireDate(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "date query parameter is required")
		return "", false
	}
	date, err := tdnet.CanonicalDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYYMMDD, YYYY-MM-DD, or YYYY/MM/DD")
		return "", false
	}
	return date, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write json response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiResponse{Success: false, Error: msg})
}
