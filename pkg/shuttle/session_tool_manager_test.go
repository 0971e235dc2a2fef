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

package shuttle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionToolManager_NewManagerEnablesAllStaticTools(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&MockTool{MockID: "a"})
	registry.Register(&MockTool{MockID: "b"})

	m := NewSessionToolManager(registry)

	assert.True(t, m.IsEnabled("a"))
	assert.True(t, m.IsEnabled("b"))
	assert.Len(t, m.EnabledTools(), 2)
}

func TestSessionToolManager_SetEnabledToggles(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&MockTool{MockID: "a"})
	m := NewSessionToolManager(registry)

	m.SetEnabled("a", false)
	assert.False(t, m.IsEnabled("a"))
	assert.Empty(t, m.EnabledTools())

	m.SetEnabled("a", true)
	assert.True(t, m.IsEnabled("a"))
	assert.Len(t, m.EnabledTools(), 1)
}

func TestSessionToolManager_RegisterToolAutoEnables(t *testing.T) {
	m := NewSessionToolManager(NewRegistry())
	m.RegisterTool(&MockTool{MockID: "fresh"})

	assert.True(t, m.IsEnabled("fresh"))
}

func TestSessionToolManager_EnabledToolsIncludesActiveContextTools(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&MockTool{MockID: "static_tool"})
	registry.Register(&MockTool{MockID: "context_tool"})
	m := NewSessionToolManager(registry)

	// Disable the context tool statically; it should still surface once its
	// context is active, since context tools bypass the static enabled set.
	m.SetEnabled("context_tool", false)

	ctx := &ToolContext{ID: "research", ContextTools: []string{"context_tool"}}
	m.ContextSession().Activate(ctx)

	ids := make([]string, 0)
	for _, tool := range m.EnabledTools() {
		ids = append(ids, tool.ID())
	}
	assert.Contains(t, ids, "static_tool")
	assert.Contains(t, ids, "context_tool")
}

func TestSessionToolManager_RegistryReturnsUnderlyingStaticSet(t *testing.T) {
	registry := NewRegistry()
	m := NewSessionToolManager(registry)
	assert.Same(t, registry, m.Registry())
}
