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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/loom-assistant/pkg/workspace"
)

// newConnectedBridge starts an httptest server whose sole handler accepts
// the RPC Bridge's WebSocket upgrade for clientID, and dials it from a
// plain coder/websocket client, returning both ends.
func newConnectedBridge(t *testing.T, clientID string) (*Bridge, *websocket.Conn, func()) {
	t.Helper()
	b := NewBridge(200*time.Millisecond, 0, 0)

	accepted := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(accepted)
		_ = b.Accept(r.Context(), w, r, clientID)
	}))

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(context.Background(), wsURL, nil)
	require.NoError(t, err)

	<-accepted
	// Give the server-side Accept goroutine a moment to register the client
	// before the test issues a Call.
	for i := 0; i < 100 && !b.IsConnected(clientID); i++ {
		time.Sleep(time.Millisecond)
	}

	cleanup := func() {
		conn.Close(websocket.StatusNormalClosure, "")
		srv.Close()
	}
	return b, conn, cleanup
}

func TestBridge_CallRoundTrip(t *testing.T) {
	b, conn, cleanup := newConnectedBridge(t, "client1")
	defer cleanup()

	go func() {
		_, data, err := conn.Read(context.Background())
		if err != nil {
			return
		}
		var env envelope
		_ = json.Unmarshal(data, &env)
		result, _ := json.Marshal([]string{"a.md", "b.md"})
		resp, _ := json.Marshal(envelope{ID: env.ID, Result: result})
		_ = conn.Write(context.Background(), websocket.MessageText, resp)
	}()

	var files []string
	err := b.Call(context.Background(), "client1", "workspace/listFiles", map[string]string{"path": "Notes"}, &files)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "b.md"}, files)
}

func TestBridge_CallToUnknownClientReturnsConnectionLost(t *testing.T) {
	b := NewBridge(0, 0, 0)
	err := b.Call(context.Background(), "ghost", "workspace/readFile", nil, nil)
	assert.ErrorIs(t, err, workspace.ErrConnectionLost)
}

func TestBridge_CallTimesOutWithoutResponse(t *testing.T) {
	b, conn, cleanup := newConnectedBridge(t, "client1")
	defer cleanup()
	_ = conn

	err := b.Call(context.Background(), "client1", "workspace/readFile", nil, nil)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestBridge_DisconnectFailsPendingCalls(t *testing.T) {
	b, conn, cleanup := newConnectedBridge(t, "client1")
	defer cleanup()

	done := make(chan error, 1)
	go func() {
		done <- b.Call(context.Background(), "client1", "workspace/readFile", nil, nil)
	}()

	// Give Call time to register as pending, then drop the connection.
	time.Sleep(20 * time.Millisecond)
	conn.Close(websocket.StatusNormalClosure, "bye")

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(300 * time.Millisecond):
		t.Fatal("expected the pending call to fail after disconnect")
	}
}

func TestBridge_IsConnectedReflectsLifecycle(t *testing.T) {
	b, _, cleanup := newConnectedBridge(t, "client1")
	assert.True(t, b.IsConnected("client1"))
	assert.False(t, b.IsConnected("someone-else"))
	cleanup()
}
