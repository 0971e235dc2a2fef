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
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teradata-labs/loom-assistant/pkg/chatengine"
	"github.com/teradata-labs/loom-assistant/pkg/streaming"
)

type chatRequest struct {
	Message        string   `json:"message"`
	System         string   `json:"system"`
	ContextNotes   string   `json:"contextNotes"`
	ToolsCatalogue string   `json:"toolsCatalogue"`
	PinnedStates   []string `json:"pinnedStates"`
}

// handleChat runs one turn of the ReAct loop against the session named by
// the URL, streaming C6's events to the caller as Server-Sent Events via
// the Streaming Bridge. The session's workspace lock is held for the
// turn's duration so no other request can mutate the same workspace
// concurrently.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeErrorWithDetails(w, http.StatusBadRequest, ErrCodeInvalidRequest, "missing or invalid \"message\"", nil)
		return
	}

	ls, err := s.sessions.Open(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.sessions.BeginTurn(r.Context(), sessionID); err != nil {
		writeError(w, err)
		return
	}
	defer s.sessions.EndTurn(context.Background(), sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	bridge, err := streaming.NewBridge(w, cancel)
	if err != nil {
		writeError(w, err)
		return
	}

	contextNotes := req.ContextNotes
	if contextNotes == "" {
		if cached, err := ls.ContextNotes(ctx); err == nil {
			contextNotes = cached
		}
	}

	engine := chatengine.NewEngine(s.chatProvider, ls.Executor, ls.ToolManager, s.assembler, s.recaller, s.engineCfg)
	engine.RunTurn(ctx, ls.ChatSession, chatengine.TurnInput{
		System:         req.System,
		ContextNotes:   contextNotes,
		ToolsCatalogue: req.ToolsCatalogue,
		PinnedStates:   req.PinnedStates,
		UserQuery:      req.Message,
	}, bridge.Emit)
}
