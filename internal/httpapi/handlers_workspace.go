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
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListWorkspaceFiles lists entries under a directory (default: root)
// of a session's primary workspace.
func (s *Server) handleListWorkspaceFiles(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	dir := r.URL.Query().Get("path")

	ls, err := s.sessions.Open(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := ls.PrimaryWorkspace.ListFiles(r.Context(), dir)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleReadWorkspaceFile reads one file's content from a session's
// primary workspace, addressed by the wildcard tail of the route.
func (s *Server) handleReadWorkspaceFile(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	path := chi.URLParam(r, "*")

	ls, err := s.sessions.Open(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	content, err := ls.PrimaryWorkspace.ReadFile(r.Context(), path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path, "content": content})
}

type writeWorkspaceFileRequest struct {
	Content string `json:"content"`
}

// handleWriteWorkspaceFile creates or overwrites one file. The body may be
// either a raw string (plain text upload) or a JSON object carrying a
// "content" field.
func (s *Server) handleWriteWorkspaceFile(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	path := chi.URLParam(r, "*")

	ls, err := s.sessions.Open(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	content, err := readFileContent(r)
	if err != nil {
		writeErrorWithDetails(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body", nil)
		return
	}

	if err := ls.PrimaryWorkspace.WriteFile(r.Context(), path, content); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// readFileContent accepts a JSON {"content": ...} body when the request
// carries an application/json Content-Type, falling back to treating the
// raw body as the file's content otherwise.
func readFileContent(r *http.Request) (string, error) {
	if r.Header.Get("Content-Type") == "application/json" {
		var req writeWorkspaceFileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", err
		}
		return req.Content, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// handleDeleteWorkspaceFile removes one file from a session's primary
// workspace.
func (s *Server) handleDeleteWorkspaceFile(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	path := chi.URLParam(r, "*")

	ls, err := s.sessions.Open(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := ls.PrimaryWorkspace.DeleteFile(r.Context(), path); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
