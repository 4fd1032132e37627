package api

import (
	"net/http"

	"github.com/dustin/go-humanize"
)

func (s *Server) handleRenderStats(w http.ResponseWriter, r *http.Request) {
	snap := s.orchestrator.Stats().Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":          snap,
		"rendered_human": humanize.Bytes(uint64(snap.TotalBytes)),
		"queue_depth":    s.orchestrator.QueueDepth(),
	})
}
