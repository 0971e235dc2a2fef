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

	"github.com/go-chi/chi/v5"

	"github.com/teradata-labs/loom-assistant/pkg/storage"
)

type sessionResponse struct {
	ID                 string  `json:"id"`
	Title              string  `json:"title"`
	IsArchived         bool    `json:"isArchived"`
	PrimaryWorkspaceID string  `json:"primaryWorkspaceId"`
	CompletionTokens   int     `json:"completionTokens"`
	PromptTokens       int     `json:"promptTokens"`
	Cost               float64 `json:"cost"`
	CreatedAt          int64   `json:"createdAt"`
	UpdatedAt          int64   `json:"updatedAt"`
}

func sessionResponseFromRow(row storage.SessionRow) sessionResponse {
	return sessionResponse{
		ID:                 row.ID,
		Title:              row.Title,
		IsArchived:         row.IsArchived,
		PrimaryWorkspaceID: row.PrimaryWorkspaceID,
		CompletionTokens:   row.CompletionTokens,
		PromptTokens:       row.PromptTokens,
		Cost:               row.Cost,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

type createSessionRequest struct {
	ID string `json:"id"`
}

// handleCreateSession opens a new session, generating an id via the
// server's IDGen when the caller doesn't supply one.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorWithDetails(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body", nil)
			return
		}
	}
	if req.ID == "" {
		req.ID = s.services.IDGen()
	}

	ls, err := s.sessions.Open(r.Context(), req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	row, err := s.services.Store.GetSession(r.Context(), ls.Session.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponseFromRow(row))
}

// handleListSessions lists sessions, including archived ones only when
// ?includeArchived=true is passed.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("includeArchived") == "true"
	rows, err := s.services.Store.ListSessions(r.Context(), includeArchived)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]sessionResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, sessionResponseFromRow(row))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetSession opens (if not already live) and returns one session.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := s.sessions.Open(r.Context(), sessionID); err != nil {
		writeError(w, err)
		return
	}
	row, err := s.services.Store.GetSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponseFromRow(row))
}

// handleDeleteSession permanently removes a session's durable state and
// drops its live collaborators.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := s.services.Store.DeleteSession(r.Context(), sessionID); err != nil {
		writeError(w, err)
		return
	}
	s.sessions.Close(sessionID)
	writeJSON(w, http.StatusNoContent, nil)
}

// handleArchiveSession runs the Archiver's finalization sequence over the
// session's current in-memory turn and seals it against further mutation.
func (s *Server) handleArchiveSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	ls, err := s.sessions.Open(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	row, err := s.archiver.Archive(r.Context(), sessionID, ls.ChatSession.GetMessages())
	if err != nil {
		writeError(w, err)
		return
	}
	s.sessions.Close(sessionID)
	writeJSON(w, http.StatusOK, sessionResponseFromRow(row))
}

// handleListMessages returns a session's persisted messages.
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	rows, err := s.services.Store.FetchMessages(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
