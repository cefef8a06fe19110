package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tiefenauer/wiki-lm/internal/pipeline"
	"github.com/tiefenauer/wiki-lm/internal/reader"
)

// handleBuild accepts a corpus build request: either a multipart upload of
// a dump file, or a source_path pointing at a dump already on disk. With
// neither, the job refreshes the vocabulary from the existing corpus.
func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	now := time.Now()
	job := &pipeline.Job{
		ID:        pipeline.NewJobID(),
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if v := r.FormValue("vocab_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "vocab_size must be a positive integer", http.StatusBadRequest)
			return
		}
		job.VocabSize = n
	}
	job.RebuildCorpus = r.FormValue("rebuild") == "true"

	if sourcePath := r.FormValue("source_path"); sourcePath != "" {
		if !reader.IsSupportedExtension(sourcePath) {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(sourcePath)), http.StatusBadRequest)
			return
		}
		job.SourcePath = sourcePath
		job.Filename = filepath.Base(sourcePath)
	} else if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()

		filename := sanitizeFilename(header.Filename)
		if !reader.IsSupportedExtension(filename) {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
		if err != nil {
			jsonError(w, "failed to read file", http.StatusInternalServerError)
			return
		}
		if int64(len(data)) > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		job.Filename = filename
		job.SetFileData(data)
	}

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/corpus/%s/status", job.ID),
	})
}

func (s *Server) handleBuildStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   snap.ID,
		"status":   snap.Status,
		"phase":    snap.Phase,
		"filename": snap.Filename,
		"progress": snap.Progress,
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
