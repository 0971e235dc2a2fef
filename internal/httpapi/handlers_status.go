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
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/teradata-labs/loom-assistant/internal/log"
)

type statusResponse struct {
	Status         string `json:"status"`
	UptimeSeconds  int64  `json:"uptimeSeconds"`
	SessionsActive int    `json:"sessionsActive"`
	RPCClients     int    `json:"rpcClientsConnected"`
}

// handleStatus reports liveness plus the same live counts the /metrics
// gauges expose, refreshing those gauges as a side effect so a scrape
// immediately after startup (before any other request) still sees
// accurate values.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.refreshGauges()

	resp := statusResponse{
		Status:         "ok",
		UptimeSeconds:  int64(time.Since(s.started).Seconds()),
		SessionsActive: s.sessions.Count(),
	}
	if s.rpc != nil {
		resp.RPCClients = s.rpc.Count()
	}
	writeJSON(w, http.StatusOK, resp)
}

// refreshGauges recomputes the three live-state gauges. Called on every
// /status and /metrics request rather than on a background timer, since
// these counts are cheap to recompute and a scrape-time snapshot avoids a
// stale gauge between ticks.
func (s *Server) refreshGauges() {
	s.metrics.sessionsActive.Set(float64(s.sessions.Count()))
	s.metrics.workspaceLocksHeld.Set(float64(s.sessions.LocksHeld()))
	if s.rpc != nil {
		s.metrics.rpcClientsConnected.Set(float64(s.rpc.Count()))
	}
}

// handleMetrics refreshes the live gauges, then delegates to the standard
// Prometheus text-format exposition handler.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.refreshGauges()
	promhttp.Handler().ServeHTTP(w, r)
}

// handleRPCUpgrade accepts a client's RPC Bridge WebSocket connection,
// identified by its clientId query parameter, and blocks for the
// connection's lifetime.
func (s *Server) handleRPCUpgrade(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		writeErrorWithDetails(w, http.StatusBadRequest, ErrCodeInvalidRequest, "missing clientId query parameter", nil)
		return
	}
	if err := s.rpc.Accept(r.Context(), w, r, clientID); err != nil {
		log.Warn("rpc bridge: connection ended", zap.String("clientId", clientID), zap.Error(err))
	}
}
