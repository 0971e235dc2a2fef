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
	"fmt"

	"github.com/teradata-labs/loom-assistant/pkg/shuttle"
)

// RPCCaller is the narrow slice of the RPC Bridge (C9) a RemoteWorkspace
// needs: a single typed call plus a connectivity check. Keeping this
// interface here (rather than importing the rpc package) avoids a C3<->C9
// import cycle — the RPC Bridge imports this package to implement
// RPCCaller, not vice versa.
type RPCCaller interface {
	Call(ctx context.Context, clientID, method string, params interface{}, result interface{}) error
	IsConnected(clientID string) bool
}

// RemoteWorkspace is backed by the RPC Bridge: every operation is a typed
// call to the owning client.
type RemoteWorkspace struct {
	clientID string
	rpc      RPCCaller
}

var _ Workspace = (*RemoteWorkspace)(nil)

// NewRemoteWorkspace builds a workspace that proxies every operation to
// clientID over rpc.
func NewRemoteWorkspace(clientID string, rpc RPCCaller) *RemoteWorkspace {
	return &RemoteWorkspace{clientID: clientID, rpc: rpc}
}

func (w *RemoteWorkspace) call(ctx context.Context, method string, params interface{}, result interface{}) error {
	if !w.rpc.IsConnected(w.clientID) {
		return ErrConnectionLost
	}
	if err := w.rpc.Call(ctx, w.clientID, method, params, result); err != nil {
		return fmt.Errorf("remote workspace %s: %w", method, err)
	}
	return nil
}

func (w *RemoteWorkspace) ListTools(ctx context.Context) ([]shuttle.ToolDefinition, error) {
	var defs []shuttle.ToolDefinition
	if err := w.call(ctx, "workspace/listTools", nil, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func (w *RemoteWorkspace) ExecuteTool(ctx context.Context, id string, params map[string]interface{}) (*shuttle.Result, error) {
	var result shuttle.Result
	req := struct {
		ID     string                 `json:"id"`
		Params map[string]interface{} `json:"params"`
	}{ID: id, Params: params}
	if err := w.call(ctx, "workspace/executeTool", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (w *RemoteWorkspace) ReadFile(ctx context.Context, path string) (string, error) {
	var content string
	if err := w.call(ctx, "workspace/readFile", struct {
		Path string `json:"path"`
	}{Path: path}, &content); err != nil {
		return "", err
	}
	return content, nil
}

func (w *RemoteWorkspace) WriteFile(ctx context.Context, path string, content string) error {
	return w.call(ctx, "workspace/writeFile", struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}{Path: path, Content: content}, &json.RawMessage{})
}

func (w *RemoteWorkspace) DeleteFile(ctx context.Context, path string) error {
	return w.call(ctx, "workspace/deleteFile", struct {
		Path string `json:"path"`
	}{Path: path}, &json.RawMessage{})
}

func (w *RemoteWorkspace) ListFiles(ctx context.Context, path string) ([]string, error) {
	var files []string
	if err := w.call(ctx, "workspace/listFiles", struct {
		Path string `json:"path"`
	}{Path: path}, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// HealthCheck reports the client-connected state.
func (w *RemoteWorkspace) HealthCheck(_ context.Context) bool {
	return w.rpc.IsConnected(w.clientID)
}
