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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are the gauges the /metrics endpoint exposes, each recomputed
// from live state at scrape time by Server.refreshGauges rather than
// incremented inline, since all three track point-in-time counts rather
// than cumulative events.
type metrics struct {
	sessionsActive      prometheus.Gauge
	workspaceLocksHeld  prometheus.Gauge
	rpcClientsConnected prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "loom_sessions_active",
			Help: "Number of sessions currently open in the Session Manager.",
		}),
		workspaceLocksHeld: factory.NewGauge(prometheus.GaugeOpts{
			Name: "loom_workspace_locks_held",
			Help: "Number of open sessions currently holding their workspace lock.",
		}),
		rpcClientsConnected: factory.NewGauge(prometheus.GaugeOpts{
			Name: "loom_rpc_clients_connected",
			Help: "Number of clients currently connected to the RPC Bridge.",
		}),
	}
}
