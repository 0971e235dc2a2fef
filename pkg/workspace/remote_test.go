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

package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRPC struct {
	connected bool
	lastCall  string
	readFile  string
}

func (f *fakeRPC) IsConnected(string) bool { return f.connected }

func (f *fakeRPC) Call(_ context.Context, _, method string, _ interface{}, result interface{}) error {
	f.lastCall = method
	switch method {
	case "workspace/readFile":
		b, _ := json.Marshal(f.readFile)
		return json.Unmarshal(b, result)
	default:
		return nil
	}
}

func TestRemoteWorkspace_DisconnectedFailsConnectionLost(t *testing.T) {
	rpc := &fakeRPC{connected: false}
	ws := NewRemoteWorkspace("client-1", rpc)

	_, err := ws.ReadFile(context.Background(), "Notes/a.md")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnectionLost))
}

func TestRemoteWorkspace_HealthCheckReflectsConnection(t *testing.T) {
	rpc := &fakeRPC{connected: true}
	ws := NewRemoteWorkspace("client-1", rpc)
	assert.True(t, ws.HealthCheck(context.Background()))

	rpc.connected = false
	assert.False(t, ws.HealthCheck(context.Background()))
}

func TestRemoteWorkspace_ReadFileDelegates(t *testing.T) {
	rpc := &fakeRPC{connected: true, readFile: "content"}
	ws := NewRemoteWorkspace("client-1", rpc)

	content, err := ws.ReadFile(context.Background(), "Notes/a.md")
	require.NoError(t, err)
	assert.Equal(t, "content", content)
	assert.Equal(t, "workspace/readFile", rpc.lastCall)
}
