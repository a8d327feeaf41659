package api

import (
	"net/http"
	"time"

	"github.com/dgallion1/quadboard/internal/chunker"
	"github.com/dgallion1/quadboard/internal/metrics"
	"github.com/dgallion1/quadboard/internal/outline"
)

func (s *Server) handleTransformOutline(w http.ResponseWriter, r *http.Request) {
	var req rulesetRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	start := time.Now()
	out := outline.Structure(req.Text)
	s.metrics.ObserveTransform(metrics.OpOutline, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]string{"outline": out})
}

func (s *Server) handleTransformSegment(w http.ResponseWriter, r *http.Request) {
	var req compendiumRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	maxChars := req.MaxChunkChars
	if maxChars == 0 {
		maxChars = s.cfg.DefaultMaxChunkChars
	}
	if maxChars == 0 {
		maxChars = chunker.DefaultMaxChunkChars
	}

	start := time.Now()
	chunks, err := chunker.Segment(req.Text, maxChars)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.ObserveTransform(metrics.OpSegment, time.Since(start))
	s.metrics.AddChunks(len(chunks))
	writeJSON(w, http.StatusOK, map[string]any{
		"max_chunk_chars": maxChars,
		"chunks":          chunks,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"window":     s.cfg.StatsWindow.String(),
		"transforms": s.metrics.Snapshot(),
	})
}
