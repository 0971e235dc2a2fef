// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/teradata-labs/loom-assistant/pkg/storage"
)

// handleListMemories returns every stored memory.
func (s *Server) handleListMemories(w http.ResponseWriter, r *http.Request) {
	memories, err := s.services.Store.FetchMemories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, memories)
}

type createMemoryRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// handleCreateMemory embeds and saves a memory supplied directly by a
// client, separate from the Archiver's automatic per-message indexing.
func (s *Server) handleCreateMemory(w http.ResponseWriter, r *http.Request) {
	var req createMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		writeErrorWithDetails(w, http.StatusBadRequest, ErrCodeInvalidRequest, "missing or invalid \"content\"", nil)
		return
	}
	if s.services.Embedder == nil {
		writeErrorWithDetails(w, http.StatusBadRequest, ErrCodeInvalidRequest, "no embedding provider configured", nil)
		return
	}

	vec, err := s.services.Embedder.Embed(r.Context(), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	now := time.Now().Unix()
	mem := storage.Memory{
		ID:        s.services.IDGen(),
		Title:     req.Title,
		Content:   req.Content,
		Tags:      req.Tags,
		Embedding: vec,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.services.Store.SaveMemory(r.Context(), mem, storage.AlwaysSave)
	if err != nil {
		writeError(w, err)
		return
	}
	mem.ID = id
	writeJSON(w, http.StatusCreated, mem)
}

type searchMemoryRequest struct {
	Query         string  `json:"query"`
	TopK          int     `json:"topK"`
	MinSimilarity float64 `json:"minSimilarity"`
}

// handleSearchMemories recalls memories by embedding similarity, the same
// path the Chat Engine uses for automatic recall.
func (s *Server) handleSearchMemories(w http.ResponseWriter, r *http.Request) {
	var req searchMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		writeErrorWithDetails(w, http.StatusBadRequest, ErrCodeInvalidRequest, "missing or invalid \"query\"", nil)
		return
	}
	if req.TopK <= 0 {
		req.TopK = 5
	}
	if s.recaller == nil {
		writeErrorWithDetails(w, http.StatusBadRequest, ErrCodeInvalidRequest, "no embedding provider configured", nil)
		return
	}

	results, err := s.recaller.Recall(r.Context(), req.Query, req.TopK, req.MinSimilarity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// handleDeleteMemory removes one memory by id.
func (s *Server) handleDeleteMemory(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryID")
	if err := s.services.Store.DeleteMemory(r.Context(), memoryID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
