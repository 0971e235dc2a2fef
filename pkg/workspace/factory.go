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
	"fmt"

	"github.com/teradata-labs/loom-assistant/pkg/shuttle"
	"github.com/teradata-labs/loom-assistant/pkg/storage"
)

// Factory builds the right Workspace variant for a WorkspaceReference.
type Factory struct {
	rpc RPCCaller
}

// NewFactory builds a workspace factory. rpc may be nil if the deployment
// never attaches client-hosted workspaces; building a client workspace then
// fails ErrConnectionFailed.
func NewFactory(rpc RPCCaller) *Factory {
	return &Factory{rpc: rpc}
}

// Build returns a LocalWorkspace for host types server/serverSession, or a
// RemoteWorkspace for client. registry supplies the tool set for local
// workspaces; it may be nil for a pure file workspace.
func (f *Factory) Build(ref storage.WorkspaceReference, registry *shuttle.Registry) (Workspace, error) {
	switch ref.HostType {
	case storage.HostServer, storage.HostServerSession:
		return NewLocalWorkspace(ref.RootPath, ref.TrustLevel, registry)
	case storage.HostClient:
		if f.rpc == nil {
			return nil, fmt.Errorf("%w: no connection manager configured", ErrConnectionFailed)
		}
		return NewRemoteWorkspace(ref.OwnerID, f.rpc), nil
	default:
		return nil, fmt.Errorf("unknown workspace host type: %s", ref.HostType)
	}
}
