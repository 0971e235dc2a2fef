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

	"github.com/teradata-labs/loom-assistant/pkg/shuttle"
)

// handleListTools returns the tool catalogue currently enabled for a
// session: its static registry plus whatever context tools its active or
// pinned tool contexts have surfaced.
//
// Sessions is a query parameter rather than part of the path since the
// catalogue isn't scoped under /sessions/{id} elsewhere; a caller with no
// open session yet gets the catalogue as it stands at session open time.
func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeErrorWithDetails(w, http.StatusBadRequest, ErrCodeInvalidRequest, "missing sessionId query parameter", nil)
		return
	}

	ls, err := s.sessions.Open(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	tools := ls.ToolManager.EnabledTools()
	defs := make([]shuttle.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, shuttle.Define(t))
	}
	writeJSON(w, http.StatusOK, defs)
}

type executeToolRequest struct {
	SessionID string                 `json:"sessionId"`
	ToolID    string                 `json:"toolId"`
	CallID    string                 `json:"callId"`
	Arguments map[string]interface{} `json:"arguments"`
}

// handleExecuteTool runs a single tool call against a session's Executor
// outside the ReAct loop, the same path a tool's Execute takes during a
// chat turn but triggered directly by a client rather than a model's
// tool_use block.
func (s *Server) handleExecuteTool(w http.ResponseWriter, r *http.Request) {
	var req executeToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" || req.ToolID == "" {
		writeErrorWithDetails(w, http.StatusBadRequest, ErrCodeInvalidRequest, "missing or invalid \"sessionId\"/\"toolId\"", nil)
		return
	}

	ls, err := s.sessions.Open(r.Context(), req.SessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := ls.Executor.Execute(r.Context(), shuttle.ToolCall{
		ID:        req.CallID,
		Name:      req.ToolID,
		Arguments: req.Arguments,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
