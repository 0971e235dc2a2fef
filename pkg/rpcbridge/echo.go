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

package rpcbridge

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/teradata-labs/loom-assistant/internal/log"
)

var echoUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// /ws/echo is a diagnostic endpoint; it never serves the main client
	// protocol, so a permissive origin check is fine here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EchoHandler is a plain, dependency-free `/ws/echo` endpoint used by
// health checks: every inbound message is written back unchanged. It lets
// a health check confirm the process accepts WebSocket upgrades without
// exercising the full RPC envelope protocol.
func EchoHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := echoUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("echo handler: upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := conn.WriteMessage(msgType, data); err != nil {
			return
		}
	}
}
