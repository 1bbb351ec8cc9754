package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/entweave/chunkd/internal/chunker"
	"github.com/entweave/chunkd/internal/pipeline"
)

// configOverrides are optional per-request knobs. Absent fields keep
// the server defaults.
type configOverrides struct {
	EntityContextWindow *int `json:"entity_context_window,omitempty"`
	EntityMergeDistance *int `json:"entity_merge_distance,omitempty"`
	MinChunkTokens      *int `json:"min_chunk_tokens,omitempty"`
	MaxChunkTokens      *int `json:"max_chunk_tokens,omitempty"`
	GapFillThreshold    *int `json:"gap_fill_threshold,omitempty"`
	ChunkSize           *int `json:"chunk_size,omitempty"`
	ChunkOverlap        *int `json:"chunk_overlap,omitempty"`
}

type chunkRequest struct {
	DocumentID string                      `json:"document_id"`
	Text       string                      `json:"text"`
	Entities   map[string][]chunker.Entity `json:"entities"`
	Config     *configOverrides            `json:"config,omitempty"`
}

type batchRequest struct {
	Documents []pipeline.Document `json:"documents"`
}

// engineFor returns the shared engine, or a derived one when the
// request carries overrides. The derived engine reuses the shared
// token counter.
func (s *Server) engineFor(ov *configOverrides) *chunker.Engine {
	if ov == nil {
		return s.engine
	}
	cfg := s.engine.Config()
	if ov.EntityContextWindow != nil {
		cfg.EntityContextWindow = *ov.EntityContextWindow
	}
	if ov.EntityMergeDistance != nil {
		cfg.EntityMergeDistance = *ov.EntityMergeDistance
	}
	if ov.MinChunkTokens != nil {
		cfg.MinChunkTokens = *ov.MinChunkTokens
	}
	if ov.MaxChunkTokens != nil {
		cfg.MaxChunkTokens = *ov.MaxChunkTokens
	}
	if ov.GapFillThreshold != nil {
		cfg.GapFillThreshold = *ov.GapFillThreshold
	}
	if ov.ChunkSize != nil {
		cfg.ChunkSize = *ov.ChunkSize
	}
	if ov.ChunkOverlap != nil {
		cfg.ChunkOverlap = *ov.ChunkOverlap
	}
	return s.engine.WithConfig(cfg)
}

func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req chunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}

	engine := s.engineFor(req.Config)
	chunks, warnings := engine.ChunkDocument(req.Text, req.Entities)
	if chunks == nil {
		chunks = []chunker.Chunk{}
	}
	if warnings == nil {
		warnings = []chunker.Warning{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"document_id": req.DocumentID,
		"chunks":      chunks,
		"warnings":    warnings,
	})
}

func (s *Server) handleChunkHierarchical(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req chunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}
	if req.DocumentID == "" {
		jsonError(w, "document_id is required", http.StatusBadRequest)
		return
	}

	engine := s.engineFor(req.Config)
	chunks := engine.ChunkTextHierarchical(req.Text, req.DocumentID)
	if chunks == nil {
		chunks = []chunker.SectionChunk{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"document_id": req.DocumentID,
		"chunks":      chunks,
	})
}

func (s *Server) handleChunkBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Documents) == 0 {
		jsonError(w, "at least one document is required", http.StatusBadRequest)
		return
	}
	for i, doc := range req.Documents {
		if doc.DocumentID == "" {
			jsonError(w, fmt.Sprintf("document %d: document_id is required", i), http.StatusBadRequest)
			return
		}
	}

	job := pipeline.NewJob(req.Documents)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/chunk/batch/%s", job.ID),
	})
}

func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
