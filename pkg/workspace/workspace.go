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

// Package workspace implements the Workspace Layer (C3): a uniform
// interface over server-local, filesystem-jailed directories and
// client-hosted directories reached over the RPC bridge.
package workspace

import (
	"context"
	"errors"

	"github.com/teradata-labs/loom-assistant/pkg/shuttle"
)

// ErrPathEscape is returned whenever a path operation would resolve outside
// a LocalWorkspace's root.
var ErrPathEscape = errors.New("PathEscape")

// ErrConnectionFailed is returned by Factory.Build when a client
// workspace is requested without a connection manager.
var ErrConnectionFailed = errors.New("ConnectionFailed")

// ErrConnectionLost is returned by RemoteWorkspace operations when the
// owning client is not currently connected.
var ErrConnectionLost = errors.New("ConnectionLost")

// ErrLockTimeout is returned by LocalWorkspace mutating operations when the
// cross-process file lock backstop can't be acquired before lockTimeout
// elapses.
var ErrLockTimeout = errors.New("LockTimeout")

// Workspace is the uniform interface every variant (local or remote)
// satisfies.
type Workspace interface {
	ListTools(ctx context.Context) ([]shuttle.ToolDefinition, error)
	ExecuteTool(ctx context.Context, id string, params map[string]interface{}) (*shuttle.Result, error)
	ReadFile(ctx context.Context, path string) (string, error)
	WriteFile(ctx context.Context, path string, content string) error
	DeleteFile(ctx context.Context, path string) error
	ListFiles(ctx context.Context, path string) ([]string, error)
	HealthCheck(ctx context.Context) bool
}
