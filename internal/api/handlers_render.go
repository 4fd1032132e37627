package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dgallion1/docwiki/internal/doctree"
	"github.com/dgallion1/docwiki/internal/wikitext"
	"github.com/dustin/go-humanize"
)

type renderRequest struct {
	Dialect string          `json:"dialect"`
	Schema  string          `json:"schema"`
	Doc     json.RawMessage `json:"doc"`
}

// handleRender serializes a JSON document synchronously.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("request exceeds max size (%s)", humanize.Bytes(uint64(s.cfg.MaxUploadBytes))), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Doc) == 0 {
		jsonError(w, "doc is required", http.StatusBadRequest)
		return
	}

	if req.Schema == "" {
		req.Schema = doctree.Lists.Name
	}
	schema, ok := doctree.LookupSchema(req.Schema)
	if !ok {
		jsonError(w, fmt.Sprintf("unknown schema %q", req.Schema), http.StatusBadRequest)
		return
	}
	d, err := s.orchestrator.Dialects().Get(req.Dialect)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := schema.NodeFromJSON(req.Doc)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if doc.Kind != doctree.KindDoc {
		jsonError(w, fmt.Sprintf("root node must be doc, got %s", doc.Kind), http.StatusBadRequest)
		return
	}

	start := time.Now()
	out, err := wikitext.New(d).Serialize(doc)
	if err != nil {
		jsonError(w, err.Error(), renderStatus(err))
		return
	}
	s.orchestrator.Stats().Record(time.Since(start), len(out))

	writeJSON(w, http.StatusOK, map[string]any{
		"wikitext": out,
		"dialect":  d.Name,
		"bytes":    len(out),
	})
}

// renderStatus maps serializer errors to HTTP status codes. Documents the
// dialect cannot express are the caller's problem.
func renderStatus(err error) int {
	switch {
	case errors.Is(err, wikitext.ErrUnknownNode),
		errors.Is(err, wikitext.ErrUnknownMark),
		errors.Is(err, doctree.ErrInvalidDocument):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
