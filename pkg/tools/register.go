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

package tools

import (
	"github.com/teradata-labs/loom-assistant/pkg/shuttle"
	"github.com/teradata-labs/loom-assistant/pkg/workspace"
)

// RegisterBuiltins registers the file and note tools backed by ws, plus the
// activate_context gateway tool over the given contexts, into registry.
func RegisterBuiltins(registry *shuttle.Registry, ws workspace.Workspace, ctxSess *shuttle.ToolContextSession, contexts []*shuttle.ToolContext) {
	registry.Register(NewReadFileTool(ws))
	registry.Register(NewWriteFileTool(ws))
	registry.Register(NewListFilesTool(ws))
	registry.Register(NewCreateNoteTool(ws))
	registry.Register(NewReadNoteTool(ws))
	registry.Register(NewSearchNotesTool(ws))
	registry.Register(NewActivateContextTool(ctxSess, contexts))
}
