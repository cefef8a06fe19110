package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
)

// handleVocabulary returns the current vocabulary artifact.
func (s *Server) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	words, err := s.orchestrator.Store().ReadVocabulary()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			jsonError(w, "no vocabulary artifact, build a corpus first", http.StatusNotFound)
			return
		}
		s.log.Error("vocabulary read failed", "error", err)
		jsonError(w, "failed to read vocabulary", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"size":  len(words),
		"words": words,
	})
}

// handlePipelineStats returns rolling per-document normalization latency.
func (s *Server) handlePipelineStats(w http.ResponseWriter, r *http.Request) {
	snap := s.orchestrator.Stats().Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"documents":   snap,
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
