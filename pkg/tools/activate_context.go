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
	"context"
	"fmt"

	"github.com/teradata-labs/loom-assistant/pkg/shuttle"
)

// ActivateContextTool is the gateway tool that switches a session's active
// ToolContext, surfacing whatever context-scoped tools that context declares.
type ActivateContextTool struct {
	session  *shuttle.ToolContextSession
	contexts map[string]*shuttle.ToolContext
}

// NewActivateContextTool builds the activate_context gateway tool over the
// given set of known contexts, keyed by ToolContext.ID.
func NewActivateContextTool(session *shuttle.ToolContextSession, contexts []*shuttle.ToolContext) *ActivateContextTool {
	byID := make(map[string]*shuttle.ToolContext, len(contexts))
	for _, c := range contexts {
		byID[c.ID] = c
		session.Register(c)
	}
	return &ActivateContextTool{session: session, contexts: byID}
}

var _ shuttle.Tool = (*ActivateContextTool)(nil)

func (t *ActivateContextTool) ID() string          { return "activate_context" }
func (t *ActivateContextTool) DisplayName() string { return "Activate Context" }
func (t *ActivateContextTool) Description() string {
	return "Switch the active tool context, surfacing the tools scoped to it."
}

func (t *ActivateContextTool) InputSchema() *shuttle.JSONSchema {
	names := make([]interface{}, 0, len(t.contexts))
	for id := range t.contexts {
		names = append(names, id)
	}
	schema := shuttle.NewObjectSchema("Arguments for activate_context", map[string]*shuttle.JSONSchema{
		"name": shuttle.NewStringSchema("Tool context id to activate"),
	}, []string{"name"})
	if len(names) > 0 {
		schema.Properties["name"].WithEnum(names...)
	}
	return schema
}

func (t *ActivateContextTool) RequiresPermission() bool { return false }
func (t *ActivateContextTool) CanExecute() bool         { return true }

func (t *ActivateContextTool) Execute(_ context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	name, _ := params["name"].(string)
	ctx, ok := t.contexts[name]
	if !ok {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "not_found", Message: fmt.Sprintf("unknown tool context: %s", name)}}, nil
	}
	t.session.Activate(ctx)
	return &shuttle.Result{
		Success:         true,
		Data:            fmt.Sprintf("activated context %q", name),
		SubagentContext: name,
	}, nil
}
