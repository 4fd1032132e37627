package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgallion1/docwiki/internal/wikistore"
	"github.com/go-chi/chi/v5"
)

const defaultPageLimit = 200

// handleListPages lists published pages under a prefix.
func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	if s.pages == nil {
		jsonError(w, "wikistore is not configured", http.StatusServiceUnavailable)
		return
	}

	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = s.cfg.PublishPrefix
	}
	limit := defaultPageLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	pages, err := s.pages.ListPages(r.Context(), prefix, limit)
	if err != nil {
		jsonError(w, "failed to list pages: "+err.Error(), storeStatus(err))
		return
	}
	if pages == nil {
		pages = []wikistore.StoredPage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	if s.pages == nil {
		jsonError(w, "wikistore is not configured", http.StatusServiceUnavailable)
		return
	}
	pageID := strings.Trim(chi.URLParam(r, "*"), "/")
	page, err := s.pages.GetPage(r.Context(), pageID)
	if err != nil {
		jsonError(w, err.Error(), storeStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleDeletePage removes a published page.
func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	if s.pages == nil {
		jsonError(w, "wikistore is not configured", http.StatusServiceUnavailable)
		return
	}
	pageID := strings.Trim(chi.URLParam(r, "*"), "/")
	if pageID == "" {
		jsonError(w, "page id is required", http.StatusBadRequest)
		return
	}
	if err := s.pages.DeletePage(r.Context(), pageID); err != nil {
		jsonError(w, err.Error(), storeStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": pageID})
}

func storeStatus(err error) int {
	var retry *wikistore.RetryableError
	switch {
	case errors.Is(err, wikistore.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &retry):
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}
